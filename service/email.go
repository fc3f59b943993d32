package service

import (
	"context"
	"errors"
	"fmt"
	"html"
	"strings"

	"celengan/config"

	"gopkg.in/gomail.v2"
)

// ErrEmailDisabled returned by user-facing mails when SMTP is not configured
var ErrEmailDisabled = errors.New("email is disabled")

// EmailService sends operator reports and password reset mails over SMTP
type EmailService struct {
	cfg  *config.EmailConfig
	send func(m *gomail.Message) error
}

// NewEmailService creates the mailer
func NewEmailService(cfg *config.EmailConfig) *EmailService {
	s := &EmailService{cfg: cfg}
	s.send = s.dialAndSend
	return s
}

// ReportSweep mails a summary of a recurrence sweep that had failing rows.
// It does nothing when email is disabled or no recipient is configured.
func (s *EmailService) ReportSweep(ctx context.Context, result *SweepResult) error {
	if !s.cfg.Enabled || s.cfg.ReportTo == "" || result == nil {
		return nil
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	subject := fmt.Sprintf("[Celengan.ku] Transaksi rutin %s: %d gagal", result.Date, result.Failed)
	return s.sendEmail(s.cfg.ReportTo, subject, s.generateSweepReportBody(result))
}

// generateSweepReportBody renders the sweep report
func (s *EmailService) generateSweepReportBody(result *SweepResult) string {
	var items strings.Builder
	for _, e := range result.Errors {
		items.WriteString("<li>")
		items.WriteString(html.EscapeString(e))
		items.WriteString("</li>\n")
	}

	return fmt.Sprintf(`
<!DOCTYPE html>
<html>
<head>
    <meta charset="UTF-8">
    <style>
        body { font-family: Arial, sans-serif; background: #f5f5f5; margin: 0; padding: 20px; }
        .container { max-width: 600px; margin: 0 auto; background: #fff; border-radius: 12px; overflow: hidden; }
        .header { background: #0f766e; color: white; padding: 24px; text-align: center; }
        .content { padding: 30px; color: #333; line-height: 1.6; }
        .errors { background: #fef2f2; border-left: 4px solid #dc2626; padding: 12px 12px 12px 32px; font-family: monospace; font-size: 13px; }
        .footer { background: #f8f9fa; padding: 16px; text-align: center; color: #6c757d; font-size: 12px; }
    </style>
</head>
<body>
    <div class="container">
        <div class="header"><h2>Celengan.ku</h2></div>
        <div class="content">
            <p>Proses transaksi rutin tanggal <strong>%s</strong> selesai.</p>
            <p>Berhasil: <strong>%d</strong><br>Gagal: <strong>%d</strong></p>
            <ul class="errors">
%s            </ul>
            <p>Transaksi yang gagal akan dicoba lagi pada proses berikutnya.</p>
        </div>
        <div class="footer">Email ini dikirim otomatis, mohon tidak dibalas.</div>
    </div>
</body>
</html>
`, html.EscapeString(result.Date), result.Processed, result.Failed, items.String())
}

// SendPasswordReset mails a reset link to the user
func (s *EmailService) SendPasswordReset(ctx context.Context, to, name, link string) error {
	if !s.cfg.Enabled {
		return ErrEmailDisabled
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	return s.sendEmail(to, "[Celengan.ku] Atur ulang kata sandi", s.generateResetEmailBody(name, link))
}

func (s *EmailService) generateResetEmailBody(name, link string) string {
	name, link = html.EscapeString(name), html.EscapeString(link)
	return fmt.Sprintf(`
<!DOCTYPE html>
<html>
<head>
    <meta charset="UTF-8">
    <style>
        body { font-family: Arial, sans-serif; background: #f5f5f5; margin: 0; padding: 20px; }
        .container { max-width: 600px; margin: 0 auto; background: #fff; border-radius: 12px; overflow: hidden; }
        .header { background: #0f766e; color: white; padding: 24px; text-align: center; }
        .content { padding: 30px; color: #333; line-height: 1.6; }
        .btn { display: inline-block; background: #0f766e; color: white !important; text-decoration: none; padding: 14px 40px; border-radius: 8px; font-weight: 600; }
        .warning { background: #fff3cd; border-left: 4px solid #ffc107; padding: 12px; color: #856404; font-size: 14px; }
        .link { word-break: break-all; color: #0f766e; font-size: 12px; }
        .footer { background: #f8f9fa; padding: 16px; text-align: center; color: #6c757d; font-size: 12px; }
    </style>
</head>
<body>
    <div class="container">
        <div class="header"><h2>Celengan.ku</h2></div>
        <div class="content">
            <p>Halo <strong>%s</strong>,</p>
            <p>Kami menerima permintaan untuk mengatur ulang kata sandi akun Anda.</p>
            <p style="text-align: center;"><a href="%s" class="btn">Atur ulang kata sandi</a></p>
            <div class="warning">Tautan ini berlaku selama 30 menit dan hanya bisa dipakai sekali. Abaikan email ini jika Anda tidak memintanya.</div>
            <p>Jika tombol tidak berfungsi, salin tautan berikut ke browser:</p>
            <p class="link">%s</p>
        </div>
        <div class="footer">Email ini dikirim otomatis, mohon tidak dibalas.</div>
    </div>
</body>
</html>
`, name, link, link)
}

// sendEmail builds and sends an HTML message
func (s *EmailService) sendEmail(to, subject, body string) error {
	m := gomail.NewMessage()
	m.SetHeader("From", m.FormatAddress(s.cfg.Username, s.cfg.From))
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/html", body)

	if err := s.send(m); err != nil {
		return fmt.Errorf("send email: %w", err)
	}
	return nil
}

func (s *EmailService) dialAndSend(m *gomail.Message) error {
	d := gomail.NewDialer(s.cfg.Host, s.cfg.Port, s.cfg.Username, s.cfg.Password)
	return d.DialAndSend(m)
}

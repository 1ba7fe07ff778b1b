package mailer

import (
	"bytes"
	"context"
	"embed"
	"fmt"
	"html/template"

	"github.com/go-mail/mail/v2"
)

//go:embed templates/*.tmpl
var templateFS embed.FS

type Mailer struct {
	dialer   *mail.Dialer
	sender   string
	attempts int
	tmpls    map[string]*template.Template
}

func New(host string, port int, username, password, sender string) (*Mailer, error) {
	entries, err := templateFS.ReadDir("templates")
	if err != nil {
		return nil, err
	}
	// 每个文件单独解析，subject/plainBody/htmlBody 不会互相覆盖
	tmpls := make(map[string]*template.Template, len(entries))
	for _, e := range entries {
		t, err := template.ParseFS(templateFS, "templates/"+e.Name())
		if err != nil {
			return nil, err
		}
		tmpls[e.Name()] = t
	}
	return &Mailer{
		dialer:   mail.NewDialer(host, port, username, password),
		sender:   sender,
		attempts: 3,
		tmpls:    tmpls,
	}, nil
}

type verifyData struct {
	Name string
	Link string
}

func (m *Mailer) SendVerification(ctx context.Context, to, name, link string) error {
	msg, err := m.build("verify_email.tmpl", to, verifyData{Name: name, Link: link})
	if err != nil {
		return err
	}
	return m.send(ctx, msg)
}

// build 模板里需定义 subject / plainBody / htmlBody 三段
func (m *Mailer) build(name, to string, data any) (*mail.Message, error) {
	t, ok := m.tmpls[name]
	if !ok {
		return nil, fmt.Errorf("mail template %q not found", name)
	}
	var subject, plain, html bytes.Buffer
	if err := t.ExecuteTemplate(&subject, "subject", data); err != nil {
		return nil, err
	}
	if err := t.ExecuteTemplate(&plain, "plainBody", data); err != nil {
		return nil, err
	}
	if err := t.ExecuteTemplate(&html, "htmlBody", data); err != nil {
		return nil, err
	}

	msg := mail.NewMessage()
	msg.SetHeader("To", to)
	msg.SetHeader("From", m.sender)
	msg.SetHeader("Subject", subject.String())
	msg.SetBody("text/plain", plain.String())
	msg.AddAlternative("text/html", html.String())
	return msg, nil
}

func (m *Mailer) send(ctx context.Context, msg *mail.Message) error {
	var err error
	for i := 0; i < m.attempts; i++ {
		if err = ctx.Err(); err != nil {
			return err
		}
		if err = m.dialer.DialAndSend(msg); err == nil {
			return nil
		}
	}
	return err
}

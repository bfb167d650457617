package worker

// email_worker.go
// Processes overdue reminders from QueueRecordatorios and mails the
// counterparty through SMTP.

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
)

// RecordatorioPayload is the job body sent to QueueRecordatorios.
type RecordatorioPayload struct {
	EmpresaID   string    `json:"empresa_id"`
	CuentaID    string    `json:"cuenta_id"`
	Tipo        string    `json:"tipo"`
	Contraparte string    `json:"contraparte"`
	Email       string    `json:"email"`
	Saldo       string    `json:"saldo"`
	Moneda      string    `json:"moneda"`
	VenceAt     time.Time `json:"vence_at"`
	DiasVencida int       `json:"dias_vencida"`
}

// Sender is the subset of infra.Mailer the worker needs.
type Sender interface {
	Configured() bool
	Send(to, subject, text, html string) error
}

// RecordatorioWorker sends one e-mail per reminder job.
type RecordatorioWorker struct {
	sender Sender
}

func NewRecordatorioWorker(sender Sender) *RecordatorioWorker {
	return &RecordatorioWorker{sender: sender}
}

// Process sends the reminder. Malformed payloads and missing recipients are
// dropped without retry; SMTP failures are returned so the pool retries.
func (w *RecordatorioWorker) Process(_ context.Context, raw json.RawMessage) error {
	var p RecordatorioPayload
	if err := json.Unmarshal(raw, &p); err != nil {
		log.Error().Err(err).Msg("recordatorio_worker: invalid payload")
		return nil
	}
	if p.Email == "" {
		log.Warn().Str("cuenta_id", p.CuentaID).Msg("recordatorio_worker: empty email, skipping")
		return nil
	}
	if w.sender == nil || !w.sender.Configured() {
		return errors.New("recordatorio_worker: SMTP no configurado")
	}

	subject, text, html := renderRecordatorio(p)
	if err := w.sender.Send(p.Email, subject, text, html); err != nil {
		return fmt.Errorf("recordatorio_worker: %w", err)
	}
	log.Info().Str("to", p.Email).Str("cuenta_id", p.CuentaID).Msg("recordatorio_worker: reminder sent")
	return nil
}

func renderRecordatorio(p RecordatorioPayload) (subject, text, html string) {
	vence := p.VenceAt.Format("02/01/2006")
	if p.Tipo == "por_pagar" {
		subject = fmt.Sprintf("Pago pendiente vencido el %s", vence)
		text = fmt.Sprintf("%s:\nTenemos un saldo pendiente de %s %s con usted, vencido hace %d días (%s).\nLo regularizaremos a la brevedad.",
			p.Contraparte, p.Saldo, p.Moneda, p.DiasVencida, vence)
	} else {
		subject = fmt.Sprintf("Recordatorio: saldo vencido el %s", vence)
		text = fmt.Sprintf("%s:\nRegistramos un saldo pendiente de %s %s vencido hace %d días (%s).\nSi ya realizó el pago, ignore este mensaje.",
			p.Contraparte, p.Saldo, p.Moneda, p.DiasVencida, vence)
	}
	html = "<p>" + strings.ReplaceAll(text, "\n", "<br>") + "</p>"
	return subject, text, html
}

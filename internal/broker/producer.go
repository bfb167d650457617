// Package broker publishes ledger events to Kafka.
package broker

import (
	"context"
	"encoding/json"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/segmentio/kafka-go"
)

// Tipos de evento.
const (
	EventoCuentaCreada   = "cuenta_creada"
	EventoAbonoAplicado  = "abono_aplicado"
	EventoAbonoRevertido = "abono_revertido"
	EventoCuentaAnulada  = "cuenta_anulada"
	EventoCuentaVencida  = "cuenta_vencida"
)

// Evento is the JSON value written for every ledger mutation. Messages are
// keyed by cuenta_id so that a consumer sees one account's events in order.
type Evento struct {
	Tipo      string    `json:"tipo"`
	EmpresaID string    `json:"empresa_id"`
	CuentaID  string    `json:"cuenta_id"`
	AbonoID   string    `json:"abono_id,omitempty"`
	Monto     string    `json:"monto,omitempty"`
	Saldo     string    `json:"saldo"`
	Estado    string    `json:"estado"`
	At        time.Time `json:"at"`
}

// Publisher is the producer seen by services. Publish is best effort: a
// broker failure is logged and never fails the ledger operation.
type Publisher interface {
	Publish(ctx context.Context, evt Evento)
	Close()
}

type Producer struct {
	l zerolog.Logger
	w *kafka.Writer
}

func NewProducer(brokers []string, topic string) *Producer {
	l := log.With().Str("component", "kafka").Str("topic", topic).Logger()

	w := &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  topic,
		Balancer:               &kafka.Hash{},
		Async:                  true,
		RequiredAcks:           kafka.RequireOne,
		AllowAutoTopicCreation: true,
		Logger: kafka.LoggerFunc(func(msg string, args ...interface{}) {
			l.Debug().Msgf(msg, args...)
		}),
		ErrorLogger: kafka.LoggerFunc(func(msg string, args ...interface{}) {
			l.Error().Msgf(msg, args...)
		}),
	}
	return &Producer{l: l, w: w}
}

func (p *Producer) Publish(ctx context.Context, evt Evento) {
	b, err := json.Marshal(evt)
	if err != nil {
		p.l.Error().Err(err).Msg("marshal event")
		return
	}
	err = p.w.WriteMessages(ctx, kafka.Message{
		Key:   []byte(evt.CuentaID),
		Value: b,
		Time:  evt.At,
	})
	if err != nil {
		p.l.Error().Err(err).Str("tipo", evt.Tipo).Str("cuenta_id", evt.CuentaID).Msg("write kafka message")
	}
}

func (p *Producer) Close() {
	if err := p.w.Close(); err != nil {
		p.l.Error().Err(err).Msg("close kafka writer")
	}
}

// Nop discards events; used when no brokers are configured.
type Nop struct{}

func (Nop) Publish(context.Context, Evento) {}
func (Nop) Close()                          {}

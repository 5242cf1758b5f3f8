package queue

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/segmentio/kafka-go"
)

// Publisher envia mensagens de texto/bytes para um canal nomeado
type Publisher interface {
	// Publish envia a mensagem; a chave determina a partição
	Publish(ctx context.Context, key string, payload []byte) error
	// Close encerra o publisher
	Close() error
}

// kafkaPublisher implementa Publisher sobre kafka.Writer
type kafkaPublisher struct {
	writer *kafka.Writer
}

// NewPublisher cria um Publisher para o tópico informado
func NewPublisher(brokers []string, topic string) Publisher {
	writer := &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireAll,
		MaxAttempts:  3,
		BatchTimeout: 10 * time.Millisecond,
		ErrorLogger: kafka.LoggerFunc(func(msg string, args ...interface{}) {
			log.Printf("kafka producer error: "+msg, args...)
		}),
	}
	return &kafkaPublisher{writer: writer}
}

// Publish implementa Publisher
func (p *kafkaPublisher) Publish(ctx context.Context, key string, payload []byte) error {
	err := p.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(key),
		Value: payload,
		Time:  time.Now().UTC(),
	})
	if err != nil {
		return fmt.Errorf("failed to publish to %s: %w", p.writer.Topic, err)
	}
	return nil
}

// Close implementa Publisher
func (p *kafkaPublisher) Close() error {
	return p.writer.Close()
}

// FatalError marca um erro de processamento que não deve ser retentado
// (payload estruturalmente inválido, por exemplo). A mensagem vai direto
// para a dead-letter.
type FatalError struct {
	Err error
}

func (e *FatalError) Error() string {
	return fmt.Sprintf("fatal: %v", e.Err)
}

func (e *FatalError) Unwrap() error {
	return e.Err
}

// Fatal envolve err como não-retentável
func Fatal(err error) error {
	return &FatalError{Err: err}
}

// IsFatal informa se err é não-retentável
func IsFatal(err error) bool {
	var fatal *FatalError
	return errors.As(err, &fatal)
}

package queue

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/segmentio/kafka-go"
)

// Handler processa o payload de uma mensagem. Erro nil faz commit da
// mensagem; erro retentável dispara retry com backoff; erro fatal (ver
// Fatal) envia direto para a dead-letter.
type Handler func(ctx context.Context, payload []byte) error

// ConsumerConfig configura um Consumer
type ConsumerConfig struct {
	Brokers []string
	Topic   string
	GroupID string

	// MaxAttempts limita as tentativas locais antes da dead-letter
	MaxAttempts int
	// BackoffMin/BackoffMax delimitam o backoff exponencial entre tentativas
	BackoffMin time.Duration
	BackoffMax time.Duration

	// DeadLetter recebe o payload bruto após esgotar as tentativas.
	// Opcional: sem ela a mensagem é apenas descartada com log.
	DeadLetter Publisher
}

// Validate verifica a configuração mínima
func (c *ConsumerConfig) Validate() error {
	if len(c.Brokers) == 0 {
		return errors.New("consumer config: brokers are required")
	}
	if c.Topic == "" {
		return errors.New("consumer config: topic is required")
	}
	if c.GroupID == "" {
		return errors.New("consumer config: group id is required")
	}
	if c.MaxAttempts <= 0 {
		c.MaxAttempts = 5
	}
	if c.BackoffMin <= 0 {
		c.BackoffMin = 100 * time.Millisecond
	}
	if c.BackoffMax <= 0 {
		c.BackoffMax = 5 * time.Second
	}
	return nil
}

// fetcher é a fatia de kafka.Reader usada pelo loop de consumo
type fetcher interface {
	FetchMessage(ctx context.Context) (kafka.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Consumer entrega mensagens de um tópico a um Handler, com entrega
// at-least-once: a mensagem só é commitada após o processamento (ou após
// ser roteada para a dead-letter).
type Consumer struct {
	reader fetcher
	cfg    ConsumerConfig
}

// NewConsumer cria um Consumer em consumer group
func NewConsumer(cfg ConsumerConfig) (*Consumer, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:  cfg.Brokers,
		Topic:    cfg.Topic,
		GroupID:  cfg.GroupID,
		MinBytes: 1,
		MaxBytes: 10e6,
		MaxWait:  1 * time.Second,
		ErrorLogger: kafka.LoggerFunc(func(msg string, args ...interface{}) {
			log.Printf("kafka reader error: "+msg, args...)
		}),
	})

	return &Consumer{reader: reader, cfg: cfg}, nil
}

// Run consome mensagens até o contexto ser cancelado
func (c *Consumer) Run(ctx context.Context, handle Handler) error {
	for {
		msg, err := c.reader.FetchMessage(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return nil
			}
			return fmt.Errorf("failed to fetch from %s: %w", c.cfg.Topic, err)
		}

		c.process(ctx, msg, handle)

		if err := c.reader.CommitMessages(ctx, msg); err != nil {
			if errors.Is(err, context.Canceled) {
				return nil
			}
			return fmt.Errorf("failed to commit offset on %s: %w", c.cfg.Topic, err)
		}
	}
}

// process executa o handler com retry local e roteia para a dead-letter
// quando as tentativas se esgotam ou o erro é fatal
func (c *Consumer) process(ctx context.Context, msg kafka.Message, handle Handler) {
	var err error
	for attempt := 1; attempt <= c.cfg.MaxAttempts; attempt++ {
		err = handle(ctx, msg.Value)
		if err == nil {
			return
		}
		if IsFatal(err) {
			log.Printf("❌ [QUEUE] Fatal error on %s, not retrying: %v", c.cfg.Topic, err)
			break
		}
		log.Printf("↩️ [QUEUE] Attempt %d/%d failed on %s: %v", attempt, c.cfg.MaxAttempts, c.cfg.Topic, err)
		if attempt < c.cfg.MaxAttempts {
			select {
			case <-ctx.Done():
				return
			case <-time.After(c.backoff(attempt)):
			}
		}
	}

	c.deadLetter(ctx, msg, err)
}

// deadLetter encaminha o payload bruto para o canal de dead-letter
func (c *Consumer) deadLetter(ctx context.Context, msg kafka.Message, cause error) {
	if c.cfg.DeadLetter == nil {
		log.Printf("❌ [QUEUE] Dropping message from %s (no dead-letter configured): %v", c.cfg.Topic, cause)
		return
	}
	if err := c.cfg.DeadLetter.Publish(ctx, string(msg.Key), msg.Value); err != nil {
		log.Printf("❌ [QUEUE] Failed to dead-letter message from %s: %v (cause: %v)", c.cfg.Topic, err, cause)
		return
	}
	log.Printf("ℹ️  [QUEUE] Message from %s routed to dead-letter: %v", c.cfg.Topic, cause)
}

// backoff calcula a espera exponencial para a próxima tentativa
func (c *Consumer) backoff(attempt int) time.Duration {
	backoff := c.cfg.BackoffMin
	for i := 1; i < attempt && backoff < c.cfg.BackoffMax; i++ {
		backoff *= 2
	}
	if backoff > c.cfg.BackoffMax {
		backoff = c.cfg.BackoffMax
	}
	return backoff
}

// Close encerra o reader
func (c *Consumer) Close() error {
	return c.reader.Close()
}

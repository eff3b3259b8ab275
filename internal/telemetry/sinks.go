package telemetry

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/IBM/sarama"
	"github.com/platefull/storefront/internal/archive"
	"github.com/platefull/storefront/internal/models"
)

// Sink receives serialized storefront events, one topic per event type.
type Sink interface {
	WriteMessage(topic string, msg []byte) error
	Close() error
}

type ConsoleSink struct{}

func (c *ConsoleSink) WriteMessage(topic string, msg []byte) error {
	output := fmt.Sprintf("[%s] %s\n", topic, string(msg))
	_, err := os.Stdout.Write([]byte(output))
	if err != nil {
		return fmt.Errorf("failed to write to stdout: %w", err)
	}
	_ = os.Stdout.Sync()
	return nil
}

func (c *ConsoleSink) Close() error { return nil }

// FileSink appends one JSON line per event to a per-topic file.
type FileSink struct {
	basePath string
	files    map[string]*os.File
}

func NewFileSink(basePath string) *FileSink {
	return &FileSink{basePath: basePath, files: make(map[string]*os.File)}
}

func (f *FileSink) WriteMessage(topic string, msg []byte) error {
	file, ok := f.files[topic]
	if !ok {
		if err := os.MkdirAll(f.basePath, 0o755); err != nil {
			return fmt.Errorf("failed to create telemetry folder: %w", err)
		}
		filename := filepath.Join(f.basePath, topic+".jsonl")
		created, err := os.OpenFile(filename, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return fmt.Errorf("failed to open file for topic %s: %w", topic, err)
		}
		f.files[topic] = created
		file = created
	}
	if _, err := file.Write(append(msg, '\n')); err != nil {
		return fmt.Errorf("failed to write message to topic %s: %w", topic, err)
	}
	return nil
}

func (f *FileSink) Close() error {
	for _, file := range f.files {
		if err := file.Close(); err != nil {
			return err
		}
	}
	return nil
}

type KafkaSink struct {
	producer sarama.SyncProducer
}

func NewKafkaSink(brokerList string) (*KafkaSink, error) {
	config := sarama.NewConfig()
	config.Producer.RequiredAcks = sarama.WaitForAll
	config.Producer.Retry.Max = 5
	config.Producer.Retry.Backoff = 100 * time.Millisecond
	config.Producer.Return.Successes = true // Must be true for SyncProducer
	config.Net.DialTimeout = 30 * time.Second
	config.Net.ReadTimeout = 30 * time.Second
	config.Net.WriteTimeout = 30 * time.Second

	producer, err := sarama.NewSyncProducer(strings.Split(brokerList, ","), config)
	if err != nil {
		return nil, fmt.Errorf("failed to create Kafka producer: %w", err)
	}
	return &KafkaSink{producer: producer}, nil
}

func (k *KafkaSink) WriteMessage(topic string, msg []byte) error {
	if k.producer == nil {
		return fmt.Errorf("Kafka producer is closed")
	}
	_, _, err := k.producer.SendMessage(&sarama.ProducerMessage{
		Topic: topic,
		Value: sarama.ByteEncoder(msg),
	})
	return err
}

func (k *KafkaSink) Close() error {
	if k.producer != nil {
		return k.producer.Close()
	}
	return nil
}

// S3Sink buffers JSON lines per topic and uploads each topic's batch as one
// object on Close. Object keys are prefixed with the session start time so
// consecutive sessions never overwrite each other.
type S3Sink struct {
	uploader archive.Uploader
	prefix   string

	mu      sync.Mutex
	buffers map[string][]byte
}

func NewS3Sink(uploader archive.Uploader) *S3Sink {
	return &S3Sink{
		uploader: uploader,
		prefix:   time.Now().UTC().Format("2006-01-02T15-04-05"),
		buffers:  make(map[string][]byte),
	}
}

func (s *S3Sink) WriteMessage(topic string, msg []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.buffers[topic] = append(s.buffers[topic], msg...)
	s.buffers[topic] = append(s.buffers[topic], '\n')
	return nil
}

func (s *S3Sink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	ctx := context.Background()
	for topic, data := range s.buffers {
		key := fmt.Sprintf("%s/%s.jsonl", s.prefix, topic)
		if err := s.uploader.Upload(ctx, key, data); err != nil {
			return err
		}
	}
	s.buffers = make(map[string][]byte)
	return nil
}

// NewSinkFromConfig picks the configured sink, defaulting to the console.
func NewSinkFromConfig(ctx context.Context, cfg *models.Config) (Sink, error) {
	switch cfg.TelemetrySink {
	case "kafka":
		return NewKafkaSink(cfg.KafkaBrokerList)
	case "file":
		return NewFileSink(cfg.TelemetryFolder), nil
	case "s3":
		uploader, err := archive.NewS3Uploader(ctx, cfg.S3Bucket, cfg.S3Region)
		if err != nil {
			return nil, err
		}
		return NewS3Sink(uploader), nil
	default:
		return &ConsoleSink{}, nil
	}
}

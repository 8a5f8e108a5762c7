package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/samuelasefa34/Sheger-pay/internal/config"
	"github.com/samuelasefa34/Sheger-pay/internal/domain"
	"github.com/samuelasefa34/Sheger-pay/internal/infra/mongodb"
	"github.com/samuelasefa34/Sheger-pay/internal/infra/rabbitmq"
)

func main() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Configuração inválida")
	}

	mongoClient, err := mongo.Connect(options.Client().ApplyURI(cfg.Mongo.URI))
	if err != nil {
		log.Fatal().Err(err).Msg("Erro ao criar client MongoDB")
	}
	defer func() {
		if err := mongoClient.Disconnect(context.Background()); err != nil {
			log.Error().Err(err).Msg("Erro ao desconectar Mongo")
		}
	}()

	pingCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := mongoClient.Ping(pingCtx, nil); err != nil {
		log.Fatal().Err(err).Msg("Erro ao pingar MongoDB")
	}
	log.Info().Msg("✅ Conectado ao MongoDB!")
	auditRepo := mongodb.NewAuditRepository(mongoClient, cfg.Mongo.AuditDatabase)

	conn, err := rabbitmq.Dial(cfg.RabbitMQ.URL(), "AuditWorker_Consumer")
	if err != nil {
		log.Fatal().Err(err).Msg("Erro ao conectar no RabbitMQ")
	}
	defer func() {
		if err := conn.Close(); err != nil {
			log.Error().Err(err).Msg("Erro ao fechar conexão RabbitMQ")
		}
	}()

	ch, err := conn.Channel()
	if err != nil {
		log.Fatal().Err(err).Msg("Erro ao abrir canal")
	}

	consumer := rabbitmq.NewAuditConsumer(ch, func(ctx context.Context, event domain.TransactionEvent) error {
		saveCtx, cancel := context.WithTimeout(ctx, cfg.Ledger.StoreTimeout)
		defer cancel()
		return auditRepo.Save(saveCtx, mongodb.NewAuditLog(event))
	})
	msgs, err := consumer.Setup()
	if err != nil {
		log.Fatal().Err(err).Msg("Erro ao preparar consumidor")
	}

	// Monitoramento de queda de conexão
	notifyClose := ch.NotifyClose(make(chan *amqp.Error, 1))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log.Info().Str("queue", rabbitmq.AuditQueue).Msg("[*] Worker iniciado. Aguardando mensagens")

	for {
		select {
		case <-ctx.Done():
			log.Info().Msg("Shutting down worker...")
			return
		case err := <-notifyClose:
			// Sai com erro para o Docker reiniciar o worker
			log.Fatal().Err(err).Msg("🔴 Canal RabbitMQ fechado")
		case d, ok := <-msgs:
			if !ok {
				log.Fatal().Msg("🔴 Canal de mensagens fechado")
			}
			log.Debug().Bytes("body", d.Body).Msg("Recebido")
			consumer.Handle(ctx, d, d.Body)
		}
	}
}

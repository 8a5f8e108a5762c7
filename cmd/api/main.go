package main

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/samuelasefa34/Sheger-pay/internal/config"
	"github.com/samuelasefa34/Sheger-pay/internal/gateway"
	"github.com/samuelasefa34/Sheger-pay/internal/infra/http/handler"
	"github.com/samuelasefa34/Sheger-pay/internal/infra/memory"
	"github.com/samuelasefa34/Sheger-pay/internal/infra/mongodb"
	"github.com/samuelasefa34/Sheger-pay/internal/infra/mysql"
	"github.com/samuelasefa34/Sheger-pay/internal/infra/postgres"
	"github.com/samuelasefa34/Sheger-pay/internal/infra/rabbitmq"
	redisInfra "github.com/samuelasefa34/Sheger-pay/internal/infra/redis"
	"github.com/samuelasefa34/Sheger-pay/internal/usecase"
)

// infra guarda as conexões abertas para o shutdown.
type infra struct {
	mongoClient *mongo.Client
	pgPool      *pgxpool.Pool
	mysqlClient *mysql.Client
	redisClient *redis.Client
	rabbitConn  *amqp.Connection
	memoryStore *memory.TransactionRepository
	wal         *memory.WAL
}

func main() {
	// Logs estruturados (Zerolog)
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Configuração inválida")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	deps := &infra{}
	defer deps.close()

	transactionRepository, err := deps.store(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Str("driver", cfg.StoreDriver).Msg("Falha ao iniciar o store de transações")
	}
	locker, err := deps.locker(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Str("driver", cfg.LockDriver).Msg("Falha ao iniciar o lock por conta")
	}

	// Eventos são best effort: sem RabbitMQ a API sobe sem publicar
	eventPublisher := deps.publisher(cfg)
	feed, err := deps.feed(cfg)
	if err != nil {
		log.Fatal().Err(err).Str("driver", cfg.FeedDriver).Msg("Falha ao iniciar o feed de mudanças")
	}

	var idempotencyRepo gateway.IdempotencyRepository
	if client := deps.redis(ctx, cfg); client != nil {
		idempotencyRepo = redisInfra.NewIdempotencyRepository(client)
	}

	// Camada de UseCase (Regras de Negócio)
	options := usecase.Options{
		StoreTimeout: cfg.Ledger.StoreTimeout,
		LockWait:     cfg.Ledger.LockWait,
	}
	recordUseCase := usecase.NewRecordTransaction(transactionRepository, locker, eventPublisher, usecase.NewMutationTracker(), options)
	getLedgerUseCase := usecase.NewGetLedger(transactionRepository, options)
	watchUseCase := usecase.NewWatchLedger(getLedgerUseCase, feed)
	bootstrapUseCase := usecase.NewBootstrapAccount(recordUseCase)

	accountHandler := handler.NewAccountHandler(bootstrapUseCase, getLedgerUseCase, watchUseCase, recordUseCase)
	transactionHandler := handler.NewTransactionHandler(recordUseCase)
	router := handler.NewRouter(accountHandler, transactionHandler, idempotencyRepo, cfg.RequestTimeout)

	server := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext: func(_ net.Listener) context.Context {
			return ctx
		},
	}

	go func() {
		log.Info().Msgf("🚀 Servidor rodando em %s", cfg.HTTPAddr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("Falha ao iniciar servidor HTTP")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("Desligando servidor...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Falha no shutdown do servidor HTTP")
	}
}

func (d *infra) store(ctx context.Context, cfg config.Config) (gateway.TransactionRepository, error) {
	switch cfg.StoreDriver {
	case config.DriverMongoDB:
		client, err := d.mongo(ctx, cfg)
		if err != nil {
			return nil, err
		}
		repo := mongodb.NewTransactionRepository(client, cfg.Mongo.Database)
		if err := repo.EnsureIndexes(ctx); err != nil {
			return nil, err
		}
		return repo, nil

	case config.DriverPostgres:
		pool, err := d.postgres(ctx, cfg)
		if err != nil {
			return nil, err
		}
		repo := postgres.NewTransactionRepository(pool)
		if err := repo.Migrate(ctx); err != nil {
			return nil, err
		}
		return repo, nil

	case config.DriverMySQL:
		client, err := mysql.NewClient(cfg.MySQL)
		if err != nil {
			return nil, err
		}
		d.mysqlClient = client
		repo := mysql.NewTransactionRepository(client)
		if err := repo.Migrate(ctx); err != nil {
			return nil, err
		}
		log.Info().Msg("✅ Conectado ao MySQL!")
		return repo, nil

	default:
		if cfg.WALPath == "" {
			d.memoryStore = memory.NewTransactionRepository()
			log.Warn().Msg("Store em memória sem WAL: os dados somem no restart")
			return d.memoryStore, nil
		}
		wal, err := memory.OpenWAL(cfg.WALPath)
		if err != nil {
			return nil, err
		}
		d.wal = wal
		repo, err := memory.NewTransactionRepositoryWithWAL(wal)
		if err != nil {
			return nil, err
		}
		d.memoryStore = repo
		return repo, nil
	}
}

func (d *infra) locker(ctx context.Context, cfg config.Config) (gateway.AccountLocker, error) {
	switch cfg.LockDriver {
	case config.DriverRedis:
		client := d.redis(ctx, cfg)
		if client == nil {
			return nil, errors.New("redis unavailable")
		}
		return redisInfra.NewAccountLocker(client, cfg.Ledger.LockTTL), nil
	case config.DriverPostgres:
		pool, err := d.postgres(ctx, cfg)
		if err != nil {
			return nil, err
		}
		return postgres.NewAccountLocker(pool), nil
	default:
		// Só protege contra corridas dentro deste processo
		return memory.NewAccountLocker(), nil
	}
}

func (d *infra) feed(cfg config.Config) (gateway.ChangeFeed, error) {
	switch cfg.FeedDriver {
	case config.DriverMongoDB:
		return mongodb.NewChangeFeed(d.mongoClient, cfg.Mongo.Database), nil
	case config.DriverRabbitMQ:
		conn := d.rabbit(cfg)
		if conn == nil {
			return nil, errors.New("rabbitmq unavailable")
		}
		return rabbitmq.NewChangeFeed(conn), nil
	default:
		return d.memoryStore, nil
	}
}

func (d *infra) publisher(cfg config.Config) gateway.EventPublisher {
	conn := d.rabbit(cfg)
	if conn == nil {
		return nil
	}
	ch, err := conn.Channel()
	if err != nil {
		log.Error().Err(err).Msg("Falha ao abrir canal RabbitMQ")
		return nil
	}
	if err := rabbitmq.DeclareExchange(ch); err != nil {
		log.Error().Err(err).Msg("Falha ao declarar Exchange")
		return nil
	}
	return rabbitmq.NewRabbitMQPublisher(ch, "sheger-pay-api")
}

func (d *infra) mongo(ctx context.Context, cfg config.Config) (*mongo.Client, error) {
	if d.mongoClient != nil {
		return d.mongoClient, nil
	}
	client, err := mongo.Connect(options.Client().ApplyURI(cfg.Mongo.URI))
	if err != nil {
		return nil, err
	}
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, err
	}
	d.mongoClient = client
	log.Info().Msg("✅ Conectado ao MongoDB!")
	return client, nil
}

func (d *infra) postgres(ctx context.Context, cfg config.Config) (*pgxpool.Pool, error) {
	if d.pgPool != nil {
		return d.pgPool, nil
	}
	pool, err := pgxpool.New(ctx, cfg.Postgres.URL)
	if err != nil {
		return nil, err
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	d.pgPool = pool
	log.Info().Msg("✅ Conectado ao PostgreSQL com sucesso!")
	return pool, nil
}

// redis devolve nil se o servidor não responder (idempotência desabilitada).
func (d *infra) redis(ctx context.Context, cfg config.Config) *redis.Client {
	if d.redisClient != nil {
		return d.redisClient
	}
	client := redis.NewClient(&redis.Options{Addr: cfg.Redis.Addr()})
	if err := client.Ping(ctx).Err(); err != nil {
		log.Warn().Err(err).Msg("Não foi possível conectar ao Redis")
		_ = client.Close()
		return nil
	}
	d.redisClient = client
	log.Info().Msg("✅ Conectado ao Redis!")
	return client
}

func (d *infra) rabbit(cfg config.Config) *amqp.Connection {
	if d.rabbitConn != nil {
		return d.rabbitConn
	}
	conn, err := rabbitmq.Dial(cfg.RabbitMQ.URL(), "ShegerPayAPI")
	if err != nil {
		log.Warn().Err(err).Msg("Falha ao conectar no RabbitMQ (Eventos não serão enviados)")
		return nil
	}
	d.rabbitConn = conn
	log.Info().Msg("✅ Conectado ao RabbitMQ!")
	return conn
}

func (d *infra) close() {
	if d.rabbitConn != nil {
		if err := d.rabbitConn.Close(); err != nil {
			log.Error().Err(err).Msg("Erro ao fechar conexão RabbitMQ")
		}
	}
	if d.redisClient != nil {
		_ = d.redisClient.Close()
	}
	if d.pgPool != nil {
		d.pgPool.Close()
	}
	if d.mysqlClient != nil {
		if err := d.mysqlClient.Close(); err != nil {
			log.Error().Err(err).Msg("Erro ao fechar MySQL")
		}
	}
	if d.mongoClient != nil {
		if err := d.mongoClient.Disconnect(context.Background()); err != nil {
			log.Error().Err(err).Msg("Erro ao desconectar Mongo")
		}
	}
	if d.wal != nil {
		if err := d.wal.Close(); err != nil {
			log.Error().Err(err).Msg("Erro ao fechar WAL")
		}
	}
}

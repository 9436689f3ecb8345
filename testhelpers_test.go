//go:build integration

package main_test

import (
	"context"
	"fmt"
	"net"
	"testing"
	"time"

	"github.com/google/uuid"
	kafkago "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	kafkamodule "github.com/testcontainers/testcontainers-go/modules/kafka"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/parkmate/service-parking/internal/application"
	bookingDomain "github.com/parkmate/service-parking/internal/domain/booking"
	"github.com/parkmate/service-parking/internal/domain/employee"
	"github.com/parkmate/service-parking/internal/events/consumer"
	"github.com/parkmate/service-parking/internal/notify"
	"github.com/parkmate/service-parking/internal/pkg/kafka"
	"github.com/parkmate/service-parking/internal/repository"
)

// testInfra holds shared test infrastructure.
type testInfra struct {
	DB           *gorm.DB
	KafkaBrokers []string
	Cleanup      func()
}

// parkingStack holds wired-up parking service components.
type parkingStack struct {
	BookingService  *application.BookingService
	PaymentService  *application.PaymentService
	CarwashService  *application.CarwashService
	Consumer        *consumer.PaymentEventConsumer
	CleanupProducer func()
}

// setupContainers starts PostgreSQL and Kafka testcontainers and returns a connected GORM DB.
func setupContainers(t *testing.T) *testInfra {
	t.Helper()
	ctx := context.Background()

	pgReq := testcontainers.ContainerRequest{
		Image:        "postgres:16-alpine",
		ExposedPorts: []string{"5432/tcp"},
		Env: map[string]string{
			"POSTGRES_USER":     "test",
			"POSTGRES_PASSWORD": "test",
			"POSTGRES_DB":       "test_parking",
		},
		WaitingFor: wait.ForLog("database system is ready to accept connections").
			WithOccurrence(2).
			WithStartupTimeout(60 * time.Second),
	}
	pgContainer, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: pgReq,
		Started:          true,
	})
	require.NoError(t, err, "failed to start PostgreSQL container")

	pgHost, err := pgContainer.Host(ctx)
	require.NoError(t, err)
	pgPort, err := pgContainer.MappedPort(ctx, "5432")
	require.NoError(t, err)

	dsn := fmt.Sprintf("host=%s port=%s user=test password=test dbname=test_parking sslmode=disable", pgHost, pgPort.Port())

	// Poll until GORM can actually connect and ping.
	var db *gorm.DB
	require.Eventually(t, func() bool {
		var err error
		db, err = gorm.Open(postgres.Open(dsn), &gorm.Config{})
		if err != nil {
			return false
		}
		sqlDB, err := db.DB()
		if err != nil {
			return false
		}
		return sqlDB.Ping() == nil
	}, 30*time.Second, 1*time.Second, "PostgreSQL not ready for connections")

	require.NoError(t, db.Exec(`CREATE EXTENSION IF NOT EXISTS "uuid-ossp"`).Error)
	require.NoError(t, db.AutoMigrate(repository.AllModels()...))

	// Start Kafka container using confluent-local (supports KRaft natively).
	kafkaContainer, err := kafkamodule.Run(ctx, "confluentinc/confluent-local:7.5.0")
	require.NoError(t, err, "failed to start Kafka container")

	kafkaBrokers, err := kafkaContainer.Brokers(ctx)
	require.NoError(t, err, "failed to get Kafka brokers")

	// Pre-create required topics.
	createTopics(t, kafkaBrokers, "parking.events", "payment.events")

	cleanup := func() {
		if err := kafkaContainer.Terminate(ctx); err != nil {
			t.Logf("failed to terminate Kafka container: %v", err)
		}
		if err := pgContainer.Terminate(ctx); err != nil {
			t.Logf("failed to terminate PostgreSQL container: %v", err)
		}
	}

	return &testInfra{
		DB:           db,
		KafkaBrokers: kafkaBrokers,
		Cleanup:      cleanup,
	}
}

// setupParkingStack wires up the booking and payment services with real
// repositories and a Kafka producer.
func setupParkingStack(t *testing.T, db *gorm.DB, brokers []string) *parkingStack {
	t.Helper()
	logger, _ := zap.NewDevelopment()

	hub := notify.NewHub(logger)
	producer := kafka.NewProducer(brokers, logger)

	bookingRepo := repository.NewGormBookingRepository(db, employee.DefaultBusyThreshold)
	slotRepo := repository.NewGormSlotRepository(db)
	lotRepo := repository.NewGormLotRepository(db)
	paymentRepo := repository.NewGormPaymentRepository(db)
	washTypeRepo := repository.NewGormWashTypeRepository(db)
	addonRepo := repository.NewGormAddonRepository(db, employee.DefaultBusyThreshold)

	policy := bookingDomain.DefaultPolicy()
	bookingSvc := application.NewBookingService(bookingRepo, slotRepo, lotRepo, policy, producer, hub, logger)
	paymentSvc := application.NewPaymentService(paymentRepo, bookingRepo, lotRepo, policy, hub, producer, logger)
	carwashSvc := application.NewCarwashService(washTypeRepo, addonRepo, bookingRepo, lotRepo, hub, producer, logger)

	groupID := fmt.Sprintf("test-parking-%s", uuid.New().String()[:8])
	paymentConsumer := consumer.NewPaymentEventConsumer(brokers, groupID, paymentSvc, logger)

	return &parkingStack{
		BookingService:  bookingSvc,
		PaymentService:  paymentSvc,
		CarwashService:  carwashSvc,
		Consumer:        paymentConsumer,
		CleanupProducer: func() { _ = producer.Close() },
	}
}

// seedLotWithSlot inserts a lot of an approved owner with one free slot.
func seedLotWithSlot(t *testing.T, db *gorm.DB, ownerID uuid.UUID) (lotID, slotID uuid.UUID) {
	t.Helper()
	now := time.Now().UTC()
	lotID = uuid.New()
	slotID = uuid.New()

	lot := repository.LotModel{
		ID:                   lotID,
		OwnerID:              ownerID,
		Name:                 "Integration Lot",
		City:                 "Pune",
		Pincode:              "411001",
		TotalSlots:           1,
		WashServiceAvailable: true,
		CreatedAt:            now,
		UpdatedAt:            now,
	}
	require.NoError(t, db.Create(&lot).Error, "failed to seed lot")

	slot := repository.SlotModel{
		ID:               slotID,
		LotID:            lotID,
		VehicleType:      "car",
		HourlyPriceCents: 5000,
		Available:        true,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	require.NoError(t, db.Create(&slot).Error, "failed to seed slot")
	return lotID, slotID
}

// seedPendingPayment inserts a booked booking with a pending electronic
// payment awaiting a gateway result.
func seedPendingPayment(t *testing.T, db *gorm.DB, lotID, slotID uuid.UUID, transactionID string) (bookingID, paymentID uuid.UUID) {
	t.Helper()
	now := time.Now().UTC()
	bookingID = uuid.New()
	paymentID = uuid.New()
	userID := uuid.New()
	endTime := now.Add(10 * time.Minute)

	bk := repository.BookingModel{
		ID:            bookingID,
		UserID:        userID,
		SlotID:        slotID,
		LotID:         lotID,
		VehicleNumber: "MH12AB1234",
		Kind:          "instant",
		Status:        "booked",
		PriceCents:    5000,
		StartTime:     now,
		EndTime:       &endTime,
		Version:       1,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	require.NoError(t, db.Create(&bk).Error, "failed to seed booking")

	pay := repository.PaymentModel{
		ID:            paymentID,
		BookingID:     bookingID,
		UserID:        userID,
		Method:        "upi",
		AmountCents:   5000,
		Status:        "PENDING",
		TransactionID: transactionID,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	require.NoError(t, db.Create(&pay).Error, "failed to seed payment")
	return bookingID, paymentID
}

// seedWashType inserts a catalog entry.
func seedWashType(t *testing.T, db *gorm.DB) uuid.UUID {
	t.Helper()
	now := time.Now().UTC()
	wt := repository.WashTypeModel{
		ID:          uuid.New(),
		Name:        fmt.Sprintf("Premium Wash %s", uuid.New().String()[:8]),
		Description: "Foam wash with interior vacuum",
		PriceCents:  8000,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	require.NoError(t, db.Create(&wt).Error, "failed to seed wash type")
	return wt.ID
}

// seedEmployee inserts an available employee into an owner's pool.
func seedEmployee(t *testing.T, db *gorm.DB, ownerID uuid.UUID) uuid.UUID {
	t.Helper()
	now := time.Now().UTC()
	emp := repository.EmployeeModel{
		ID:           uuid.New(),
		OwnerID:      &ownerID,
		FirstName:    "Ravi",
		LastName:     "Kumar",
		Phone:        "9876543210",
		Availability: "available",
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	require.NoError(t, db.Create(&emp).Error, "failed to seed employee")
	return emp.ID
}

// seedExpiredBooking inserts a booked booking whose window is already
// over, with its slot still marked occupied.
func seedExpiredBooking(t *testing.T, db *gorm.DB, lotID, slotID uuid.UUID) (bookingID, userID uuid.UUID) {
	t.Helper()
	now := time.Now().UTC()
	bookingID = uuid.New()
	userID = uuid.New()
	endTime := now.Add(-5 * time.Minute)

	bk := repository.BookingModel{
		ID:            bookingID,
		UserID:        userID,
		SlotID:        slotID,
		LotID:         lotID,
		VehicleNumber: "MH12EX0001",
		Kind:          "instant",
		Status:        "booked",
		PriceCents:    5000,
		StartTime:     now.Add(-65 * time.Minute),
		EndTime:       &endTime,
		Version:       1,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	require.NoError(t, db.Create(&bk).Error, "failed to seed expired booking")
	require.NoError(t, db.Model(&repository.SlotModel{}).
		Where("id = ?", slotID).
		Update("available", false).Error, "failed to occupy slot")
	return bookingID, userID
}

// seedActiveAddon inserts an in-progress wash add-on assigned to an
// employee and bumps the employee's workload accordingly.
func seedActiveAddon(t *testing.T, db *gorm.DB, bookingID, washTypeID, employeeID uuid.UUID) uuid.UUID {
	t.Helper()
	now := time.Now().UTC()
	addon := repository.WashAddonModel{
		ID:         uuid.New(),
		BookingID:  bookingID,
		WashTypeID: washTypeID,
		EmployeeID: &employeeID,
		PriceCents: 8000,
		Status:     "active",
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	require.NoError(t, db.Create(&addon).Error, "failed to seed addon")
	require.NoError(t, db.Model(&repository.EmployeeModel{}).
		Where("id = ?", employeeID).
		Update("current_assignments", 1).Error, "failed to bump workload")
	return addon.ID
}

// publishTestEvent publishes a CloudEvent to Kafka.
func publishTestEvent(t *testing.T, brokers []string, topic, source, eventType string, data interface{}) {
	t.Helper()
	logger, _ := zap.NewDevelopment()
	producer := kafka.NewProducer(brokers, logger)
	defer func() { _ = producer.Close() }()

	ce, err := kafka.NewCloudEvent(source, eventType, data)
	require.NoError(t, err, "failed to create cloud event")

	err = producer.PublishEvent(context.Background(), topic, ce)
	require.NoError(t, err, "failed to publish event")
}

// waitForPaymentStatus polls the payments table until the status matches.
func waitForPaymentStatus(t *testing.T, db *gorm.DB, paymentID uuid.UUID, expectedStatus string, timeout time.Duration) repository.PaymentModel {
	t.Helper()
	var result repository.PaymentModel
	require.Eventually(t, func() bool {
		var model repository.PaymentModel
		err := db.Where("id = ?", paymentID).First(&model).Error
		if err != nil {
			return false
		}
		if model.Status == expectedStatus {
			result = model
			return true
		}
		return false
	}, timeout, 200*time.Millisecond, "payment did not transition to %s", expectedStatus)
	return result
}

// consumeOneEvent reads from a Kafka topic until it finds an event of the expected type.
func consumeOneEvent(t *testing.T, brokers []string, topic, expectedType string, timeout time.Duration) kafka.CloudEvent {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	groupID := fmt.Sprintf("test-assert-%s", uuid.New().String()[:8])
	reader := kafkago.NewReader(kafkago.ReaderConfig{
		Brokers:     brokers,
		GroupID:     groupID,
		Topic:       topic,
		MinBytes:    1,
		MaxBytes:    10e6,
		StartOffset: kafkago.FirstOffset,
	})
	defer func() { _ = reader.Close() }()

	for {
		msg, err := reader.ReadMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				t.Fatalf("timed out waiting for event type %q on topic %q", expectedType, topic)
			}
			continue
		}
		ce, err := kafka.ParseCloudEvent(msg.Value)
		if err != nil {
			continue
		}
		if ce.Type == expectedType {
			return ce
		}
	}
}

// createTopics pre-creates Kafka topics so producers don't fail with "Unknown Topic".
func createTopics(t *testing.T, brokers []string, topics ...string) {
	t.Helper()
	conn, err := kafkago.Dial("tcp", brokers[0])
	require.NoError(t, err, "failed to dial Kafka for topic creation")
	defer conn.Close()

	controller, err := conn.Controller()
	require.NoError(t, err, "failed to get Kafka controller")

	controllerConn, err := kafkago.Dial("tcp", net.JoinHostPort(controller.Host, fmt.Sprintf("%d", controller.Port)))
	require.NoError(t, err, "failed to connect to Kafka controller")
	defer controllerConn.Close()

	topicConfigs := make([]kafkago.TopicConfig, len(topics))
	for i, topic := range topics {
		topicConfigs[i] = kafkago.TopicConfig{
			Topic:             topic,
			NumPartitions:     1,
			ReplicationFactor: 1,
		}
	}
	err = controllerConn.CreateTopics(topicConfigs...)
	require.NoError(t, err, "failed to create Kafka topics")

	// Give Kafka a moment to propagate topic metadata.
	time.Sleep(1 * time.Second)
}

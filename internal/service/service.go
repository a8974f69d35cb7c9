package service

import (
	"context"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/golang-jwt/jwt/v5"
	"github.com/msalazar/tanda-service/internal/config"
	"github.com/msalazar/tanda-service/internal/models"
	"github.com/msalazar/tanda-service/internal/notify"
	"github.com/msalazar/tanda-service/internal/rotation"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
)

// Store is the durable state the service coordinates through. The
// transition methods enforce the payment state machine atomically
// against the store: a call whose status precondition no longer holds
// returns models.ErrInvalidTransition.
type Store interface {
	CreateUser(user *models.User) error
	FindUserByEmail(email string) (*models.User, error)
	FindUserByID(id int64) (*models.User, error)
	ListAdmins() ([]models.User, error)

	CreateTanda(tanda *models.Tanda) error
	FindTandaByID(id int64) (*models.Tanda, error)
	AddParticipant(p *models.Participant) error
	ListParticipants(tandaID int64) ([]models.Participant, error)
	FindParticipantByID(id int64) (*models.Participant, error)
	MarkWinner(participantID int64) error

	CreatePayments(payments []models.Payment) error
	FindPaymentByID(id int64) (*models.Payment, error)
	TransitionToUploaded(id int64, receiptPath string) (*models.Payment, error)
	TransitionToValidated(id int64) (*models.Payment, error)
	TransitionToRejected(id int64, reason string) (*models.Payment, error)
	ListUploaded() ([]models.Payment, error)
	PotForTanda(tandaID int64) (float64, error)

	ListNotifications(userID int64) ([]models.Notification, error)
}

// Notifier fans a payment event out to a recipient set.
type Notifier interface {
	Dispatch(ctx context.Context, event notify.Event, recipients []models.User) int
}

// Service handles business logic
type Service struct {
	store    Store
	notifier Notifier
	log      *logrus.Logger
	config   *config.Config
	validate *validator.Validate
}

// NewService initializes a new service
func NewService(store Store, notifier Notifier, log *logrus.Logger, cfg *config.Config) *Service {
	return &Service{
		store:    store,
		notifier: notifier,
		log:      log,
		config:   cfg,
		validate: validator.New(),
	}
}

// RegisterInput is the payload for creating a user.
type RegisterInput struct {
	FirstName      string `json:"first_name" validate:"required"`
	LastName       string `json:"last_name" validate:"required"`
	SecondLastName string `json:"second_last_name"`
	Phone          string `json:"phone" validate:"required"`
	Email          string `json:"email" validate:"required,email"`
	PostalCode     string `json:"postal_code"`
	State          string `json:"state"`
	Municipality   string `json:"municipality"`
	Colony         string `json:"colony"`
	Password       string `json:"password" validate:"required,min=8"`
}

// Register creates a new user with hashed password
func (s *Service) Register(input RegisterInput) (*models.User, error) {
	if err := s.validate.Struct(input); err != nil {
		return nil, fmt.Errorf("invalid registration: %w", err)
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &models.User{
		FirstName:      input.FirstName,
		LastName:       input.LastName,
		SecondLastName: input.SecondLastName,
		Email:          input.Email,
		PostalCode:     input.PostalCode,
		State:          input.State,
		Municipality:   input.Municipality,
		Colony:         input.Colony,
		Role:           models.RoleUser,
		PasswordHash:   string(hashedPassword),
	}
	user.SetPhone(input.Phone)

	if err := s.store.CreateUser(user); err != nil {
		return nil, err
	}

	s.log.Infof("User registered: %s", user.Email)
	return user, nil
}

// Claims carries the role alongside the registered JWT claims.
type Claims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// Login authenticates a user and returns a JWT token
func (s *Service) Login(email, password string) (string, error) {
	user, err := s.store.FindUserByEmail(email)
	if err != nil {
		return "", fmt.Errorf("invalid credentials")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return "", fmt.Errorf("invalid credentials")
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		Role: user.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   fmt.Sprintf("%d", user.ID),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(24 * time.Hour)),
		},
	})
	tokenString, err := token.SignedString([]byte(s.config.JWTSecret))
	if err != nil {
		return "", fmt.Errorf("failed to generate token: %w", err)
	}

	s.log.Infof("User logged in: %s", user.Email)
	return tokenString, nil
}

// CreateTandaInput is the payload for creating a tanda.
type CreateTandaInput struct {
	Name              string    `json:"name" validate:"required"`
	Amount            float64   `json:"amount"`
	Frequency         string    `json:"frequency" validate:"required,oneof=weekly biweekly monthly"`
	ParticipantsCount int       `json:"participants_count" validate:"required,min=2"`
	StartDate         time.Time `json:"start_date" validate:"required"`
	DeliveryDate      time.Time `json:"delivery_date" validate:"required"`
	PaymentMode       string    `json:"payment_mode" validate:"required,oneof=intermediary direct"`
}

// CreateTanda creates a new tanda. A negative amount is normalized to
// zero, not rejected.
func (s *Service) CreateTanda(input CreateTandaInput) (*models.Tanda, error) {
	if err := s.validate.Struct(input); err != nil {
		return nil, fmt.Errorf("invalid tanda: %w", err)
	}
	if input.DeliveryDate.Before(input.StartDate) {
		return nil, fmt.Errorf("invalid tanda: delivery date precedes start date")
	}

	tanda := &models.Tanda{
		Name:              input.Name,
		Frequency:         models.Frequency(input.Frequency),
		ParticipantsCount: input.ParticipantsCount,
		StartDate:         input.StartDate,
		DeliveryDate:      input.DeliveryDate,
		PaymentMode:       models.PaymentMode(input.PaymentMode),
	}
	tanda.SetAmount(input.Amount)

	if err := s.store.CreateTanda(tanda); err != nil {
		return nil, err
	}

	s.log.Infof("Tanda created: %s (%d participants, %s)", tanda.Name, tanda.ParticipantsCount, tanda.Frequency)
	return tanda, nil
}

// AddParticipant enrolls a user at a rotation position.
func (s *Service) AddParticipant(tandaID, userID int64, position int) (*models.Participant, error) {
	if position < 1 {
		return nil, fmt.Errorf("position must be 1-based")
	}
	if _, err := s.store.FindTandaByID(tandaID); err != nil {
		return nil, err
	}
	if _, err := s.store.FindUserByID(userID); err != nil {
		return nil, err
	}

	p := &models.Participant{TandaID: tandaID, UserID: userID, Position: position}
	if err := s.store.AddParticipant(p); err != nil {
		return nil, err
	}

	s.log.Infof("Participant %d joined tanda %d at position %d", userID, tandaID, position)
	return p, nil
}

// GenerateSchedule plans the tanda's cycles and creates every payment
// obligation. Returns the number of payments created.
func (s *Service) GenerateSchedule(tandaID int64) (int, error) {
	tanda, err := s.store.FindTandaByID(tandaID)
	if err != nil {
		return 0, err
	}
	participants, err := s.store.ListParticipants(tandaID)
	if err != nil {
		return 0, err
	}

	cycles, err := rotation.Plan(tanda, participants)
	if err != nil {
		return 0, err
	}
	payments := rotation.BuildPayments(tanda, participants, cycles)
	if err := s.store.CreatePayments(payments); err != nil {
		return 0, err
	}

	s.log.Infof("Generated %d payments over %d cycles for tanda %d", len(payments), len(cycles), tandaID)
	return len(payments), nil
}

// MarkWinner records that a participant received the pot.
func (s *Service) MarkWinner(participantID int64) error {
	if _, err := s.store.FindParticipantByID(participantID); err != nil {
		return err
	}
	return s.store.MarkWinner(participantID)
}

// ListUploaded returns payments awaiting validation.
func (s *Service) ListUploaded() ([]models.Payment, error) {
	return s.store.ListUploaded()
}

// Pot returns the sum of validated contributions of a tanda.
func (s *Service) Pot(tandaID int64) (float64, error) {
	return s.store.PotForTanda(tandaID)
}

// Notifications returns a user's notification feed.
func (s *Service) Notifications(userID int64) ([]models.Notification, error) {
	return s.store.ListNotifications(userID)
}

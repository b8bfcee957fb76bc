package model

import (
	"context"
	"errors"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// IdentityRepository is the credential store: it persists global identities and verifies
// the credentials they present.
type IdentityRepository struct {
	DB *gorm.DB
}

// Authenticate returns the identity owning email if password matches its credential.
// Unknown emails and wrong passwords are indistinguishable to the caller.
func (r *IdentityRepository) Authenticate(ctx context.Context, email, password string) (*Identity, error) {
	identity, err := r.FindByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if identity == nil {
		// Unknown emails take as long to reject as wrong passwords
		_ = bcrypt.CompareHashAndPassword(dummyHash, []byte(password))
		return nil, ErrAuthentication
	}
	if err := bcrypt.CompareHashAndPassword([]byte(identity.Password), []byte(password)); err != nil {
		return nil, ErrAuthentication
	}
	return identity, nil
}

// Register creates a new identity, hashing its password. It fails with ErrEmailTaken if
// the email already belongs to another identity.
func (r *IdentityRepository) Register(ctx context.Context, identity *Identity) error {
	email, err := ValidateEmail(identity.Email)
	if err != nil {
		return err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(identity.Password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	identity.Email = email
	identity.Password = string(hash)
	if identity.Uuid == "" {
		identity.Uuid = uuid.NewString()
	}
	identity.Sanitize()

	if err := r.DB.WithContext(ctx).Create(identity).Error; err != nil {
		if isUniqueViolation(err) {
			return ErrEmailTaken
		}
		log.WithError(err).Error("error creating identity")
		return datastoreError(err)
	}
	return nil
}

func (r *IdentityRepository) FindByEmail(ctx context.Context, email string) (*Identity, error) {
	return r.find(ctx, "email", NormalizeEmail(email))
}

func (r *IdentityRepository) find(ctx context.Context, field, value string) (*Identity, error) {
	var identity Identity

	result := r.DB.WithContext(ctx).Where(field+" = ?", value).First(&identity)
	if errors.Is(result.Error, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if result.Error != nil {
		log.WithError(result.Error).WithField(field, value).Error("error finding identity")
		return nil, datastoreError(result.Error)
	}
	return &identity, nil
}

var dummyHash, _ = bcrypt.GenerateFromPassword([]byte("barrio"), bcrypt.MinCost)

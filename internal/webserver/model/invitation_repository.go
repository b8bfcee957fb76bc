package model

import (
	"context"
	"errors"
	"time"

	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// ErrCodeTaken is returned when a new invitation collides with an existing code
var ErrCodeTaken = errors.New("invitation code already exists")

type InvitationRepository struct {
	DB *gorm.DB
}

func (r *InvitationRepository) Create(ctx context.Context, invitation *InvitationCode) error {
	invitation.Code = NormalizeCode(invitation.Code)
	invitation.Email = NormalizeEmail(invitation.Email)
	if invitation.Status == "" {
		invitation.Status = InvitationPending
	}

	if err := r.DB.WithContext(ctx).Create(invitation).Error; err != nil {
		if isUniqueViolation(err) {
			return ErrCodeTaken
		}
		log.WithError(err).WithField("email", invitation.Email).Error("error creating invitation")
		return datastoreError(err)
	}
	return nil
}

// FindByCode looks an invitation up ignoring case, returning nil if there is none
func (r *InvitationRepository) FindByCode(ctx context.Context, code string) (*InvitationCode, error) {
	var invitation InvitationCode

	result := r.DB.WithContext(ctx).Where("code = ?", NormalizeCode(code)).First(&invitation)
	if errors.Is(result.Error, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if result.Error != nil {
		log.WithError(result.Error).Error("error finding invitation")
		return nil, datastoreError(result.Error)
	}
	return &invitation, nil
}

// HasLivePending reports whether the tenant already has a pending, unexpired invitation for email
func (r *InvitationRepository) HasLivePending(ctx context.Context, tenantID uint, email string, now time.Time) (bool, error) {
	var total int64

	err := r.DB.WithContext(ctx).Model(&InvitationCode{}).
		Where("tenant_id = ? AND email = ? AND status = ?", tenantID, NormalizeEmail(email), InvitationPending).
		Where("(expires_at IS NULL OR expires_at > ?)", now).
		Count(&total).Error
	if err != nil {
		log.WithError(err).Error("error checking pending invitations")
		return false, datastoreError(err)
	}
	return total > 0, nil
}

// ListByTenant returns the invitations of a tenant, newest first
func (r *InvitationRepository) ListByTenant(ctx context.Context, tenantID uint) ([]InvitationCode, error) {
	var invitations []InvitationCode

	if err := r.DB.WithContext(ctx).Where("tenant_id = ?", tenantID).Order("id DESC").Find(&invitations).Error; err != nil {
		log.WithError(err).WithField("tenant", tenantID).Error("error listing invitations")
		return nil, datastoreError(err)
	}
	return invitations, nil
}

// MarkUsed flips a pending invitation to used. It reports false if the invitation was not
// pending anymore when the update ran.
func (r *InvitationRepository) MarkUsed(ctx context.Context, id uint, now time.Time) (bool, error) {
	result := r.DB.WithContext(ctx).Model(&InvitationCode{}).
		Where("id = ? AND status = ?", id, InvitationPending).
		Updates(map[string]any{"status": InvitationUsed, "used_at": now})
	if result.Error != nil {
		log.WithError(result.Error).WithField("invitation", id).Error("error redeeming invitation")
		return false, datastoreError(result.Error)
	}
	return result.RowsAffected == 1, nil
}

// ReapExpired stores the expired status on every pending invitation past its expiry date
func (r *InvitationRepository) ReapExpired(ctx context.Context, tenantID uint, now time.Time) (int64, error) {
	result := r.DB.WithContext(ctx).Model(&InvitationCode{}).
		Where("tenant_id = ? AND status = ? AND expires_at IS NOT NULL AND expires_at < ?", tenantID, InvitationPending, now).
		Update("status", InvitationExpired)
	if result.Error != nil {
		log.WithError(result.Error).WithField("tenant", tenantID).Error("error reaping invitations")
		return 0, datastoreError(result.Error)
	}
	return result.RowsAffected, nil
}

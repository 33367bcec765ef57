package businessflow

import (
	"bytes"
	"context"
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"image/png"
	"math/big"
	"strings"
	"time"

	"github.com/amirphl/leadboard/app/dto"
	"github.com/amirphl/leadboard/app/services"
	"github.com/amirphl/leadboard/models"
	"github.com/amirphl/leadboard/repository"
	"github.com/amirphl/leadboard/utils"
	"github.com/google/uuid"
	"github.com/pquerna/otp"
	"github.com/pquerna/otp/totp"
	"golang.org/x/crypto/bcrypt"
)

const (
	qrCodeSize          = 200
	recoveryCodeAlpha   = "abcdefghjkmnpqrstuvwxyz23456789"
	recoveryCodeHalfLen = 5
)

// MFAFlow implements TOTP enrollment, challenge/verify and recovery codes
type MFAFlow interface {
	Enroll(ctx context.Context, actor Actor, req *dto.EnrollFactorRequest, metadata *ClientMetadata) (*dto.EnrollFactorResponse, error)
	Challenge(ctx context.Context, actor Actor, req *dto.ChallengeFactorRequest) (*dto.ChallengeFactorResponse, error)
	Verify(ctx context.Context, actor Actor, req *dto.VerifyFactorRequest, metadata *ClientMetadata) (*dto.TokenPairResponse, error)
	Recover(ctx context.Context, actor Actor, req *dto.RecoverRequest, metadata *ClientMetadata) (*dto.TokenPairResponse, error)
	ListFactors(ctx context.Context, actor Actor) (*dto.FactorsResponse, error)
	Unenroll(ctx context.Context, actor Actor, factorID string, metadata *ClientMetadata) error
	AAL(ctx context.Context, actor Actor) (*dto.AALResponse, error)
}

// MFAFlowImpl implements MFAFlow
type MFAFlowImpl struct {
	factorRepo    repository.MFAFactorRepository
	challengeRepo repository.MFAChallengeRepository
	tokens        services.TokenService
	activity      ActivityRecorder
	issuer        string
	recoveryCodes int
	bcryptCost    int
	now           func() time.Time
}

func NewMFAFlow(
	factorRepo repository.MFAFactorRepository,
	challengeRepo repository.MFAChallengeRepository,
	tokens services.TokenService,
	activity ActivityRecorder,
	issuer string,
	recoveryCodes int,
	bcryptCost int,
) MFAFlow {
	if bcryptCost < bcrypt.MinCost {
		bcryptCost = bcrypt.DefaultCost
	}
	return &MFAFlowImpl{
		factorRepo:    factorRepo,
		challengeRepo: challengeRepo,
		tokens:        tokens,
		activity:      activity,
		issuer:        issuer,
		recoveryCodes: recoveryCodes,
		bcryptCost:    bcryptCost,
		now:           utils.UTCNow,
	}
}

func (f *MFAFlowImpl) Enroll(ctx context.Context, actor Actor, req *dto.EnrollFactorRequest, metadata *ClientMetadata) (*dto.EnrollFactorResponse, error) {
	// a second factor may only be added from a session that already passed the first
	if !actor.HasAAL2() {
		hasFactor, err := f.hasVerifiedFactor(ctx, actor)
		if err != nil {
			return nil, err
		}
		if hasFactor {
			return nil, NewBusinessError(CodeMFARequired, "Two-factor verification required", ErrForbidden)
		}
	}

	if _, err := f.factorRepo.DeleteUnverifiedByUser(ctx, actor.UserID); err != nil {
		return nil, err
	}

	key, err := totp.Generate(totp.GenerateOpts{
		Issuer:      f.issuer,
		AccountName: actor.UserID.String(),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to generate totp secret: %w", err)
	}

	qr, err := qrDataURI(key)
	if err != nil {
		return nil, err
	}

	factor := &models.MFAFactor{
		UserID:       actor.UserID,
		FriendlyName: strings.TrimSpace(req.FriendlyName),
		FactorType:   models.FactorTypeTOTP,
		Secret:       key.Secret(),
		Status:       models.FactorStatusUnverified,
	}
	if err := f.factorRepo.Save(ctx, factor); err != nil {
		return nil, err
	}

	f.activity.Record(ctx, actor, models.ActivityMFAEnrolled, models.ObjectTypeFactor, factor.ID.String(), nil, metadata)

	return &dto.EnrollFactorResponse{
		FactorID: factor.ID,
		Type:     models.FactorTypeTOTP,
		TOTP: dto.TOTPDetails{
			Secret: key.Secret(),
			URI:    key.URL(),
			QRCode: qr,
		},
	}, nil
}

func (f *MFAFlowImpl) hasVerifiedFactor(ctx context.Context, actor Actor) (bool, error) {
	verified := models.FactorStatusVerified
	return f.factorRepo.Exists(ctx, models.MFAFactorFilter{UserID: &actor.UserID, Status: &verified})
}

func qrDataURI(key *otp.Key) (string, error) {
	img, err := key.Image(qrCodeSize, qrCodeSize)
	if err != nil {
		return "", fmt.Errorf("failed to render qr code: %w", err)
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return "", fmt.Errorf("failed to encode qr code: %w", err)
	}
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}

// ownedFactor loads a factor and hides factors of other users behind not found
func (f *MFAFlowImpl) ownedFactor(ctx context.Context, actor Actor, raw string) (*models.MFAFactor, error) {
	id, err := uuid.Parse(strings.TrimSpace(raw))
	if err != nil {
		return nil, validationError("Invalid factor id")
	}
	factor, err := f.factorRepo.ByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if factor == nil || factor.UserID != actor.UserID {
		return nil, NewBusinessError(CodeFactorNotFound, "Factor not found", ErrFactorNotFound)
	}
	return factor, nil
}

func (f *MFAFlowImpl) Challenge(ctx context.Context, actor Actor, req *dto.ChallengeFactorRequest) (*dto.ChallengeFactorResponse, error) {
	factor, err := f.ownedFactor(ctx, actor, req.FactorID)
	if err != nil {
		return nil, err
	}

	challenge := &models.MFAChallenge{
		FactorID:  factor.ID,
		UserID:    actor.UserID,
		ExpiresAt: f.now().Add(utils.MFAChallengeTTL),
	}
	if err := f.challengeRepo.Save(ctx, challenge); err != nil {
		return nil, err
	}

	return &dto.ChallengeFactorResponse{ChallengeID: challenge.ID, ExpiresAt: challenge.ExpiresAt}, nil
}

func (f *MFAFlowImpl) Verify(ctx context.Context, actor Actor, req *dto.VerifyFactorRequest, metadata *ClientMetadata) (*dto.TokenPairResponse, error) {
	factor, err := f.ownedFactor(ctx, actor, req.FactorID)
	if err != nil {
		return nil, err
	}

	challengeID, err := uuid.Parse(strings.TrimSpace(req.ChallengeID))
	if err != nil {
		return nil, validationError("Invalid challenge id")
	}
	challenge, err := f.challengeRepo.ByID(ctx, challengeID)
	if err != nil {
		return nil, err
	}
	if challenge == nil || challenge.FactorID != factor.ID || challenge.UserID != actor.UserID {
		return nil, NewBusinessError(CodeChallengeNotFound, "Challenge not found", ErrChallengeNotFound)
	}

	now := f.now()
	if !challenge.IsUsable(now) {
		return nil, NewBusinessError(CodeChallengeExpired, "Challenge expired or already used", ErrChallengeExpired)
	}

	valid, err := totp.ValidateCustom(strings.TrimSpace(req.Code), factor.Secret, now, totp.ValidateOpts{
		Period:    30,
		Skew:      1,
		Digits:    otp.DigitsSix,
		Algorithm: otp.AlgorithmSHA1,
	})
	if err != nil || !valid {
		return nil, NewBusinessError(CodeInvalidMFACode, "Invalid verification code", ErrInvalidMFACode)
	}

	consumed, err := f.challengeRepo.Consume(ctx, challenge.ID, now)
	if err != nil {
		return nil, err
	}
	if !consumed {
		return nil, NewBusinessError(CodeChallengeExpired, "Challenge expired or already used", ErrChallengeExpired)
	}

	var recoveryCodes []string
	if !factor.IsVerified() {
		codes, hashes, err := f.newRecoveryCodes()
		if err != nil {
			return nil, err
		}
		factor.Status = models.FactorStatusVerified
		factor.RecoveryCodeHashes = hashes
		factor.UpdatedAt = now
		if err := f.factorRepo.Update(ctx, factor); err != nil {
			return nil, err
		}
		recoveryCodes = codes
	}

	resp, err := f.issueAAL2(ctx, actor)
	if err != nil {
		return nil, err
	}
	resp.RecoveryCodes = recoveryCodes

	f.activity.Record(ctx, actor, models.ActivityMFAVerified, models.ObjectTypeFactor, factor.ID.String(), nil, metadata)
	return resp, nil
}

func (f *MFAFlowImpl) issueAAL2(ctx context.Context, actor Actor) (*dto.TokenPairResponse, error) {
	role := actor.Role
	if role == "" {
		role = models.RoleUser
	}
	pair, err := f.tokens.GenerateTokens(ctx, actor.UserID, role, models.AAL2)
	if err != nil {
		return nil, fmt.Errorf("failed to issue tokens: %w", err)
	}
	return toTokenPairResponse(pair), nil
}

// newRecoveryCodes returns plaintext codes and their bcrypt hashes in matching order
func (f *MFAFlowImpl) newRecoveryCodes() ([]string, []string, error) {
	codes := make([]string, 0, f.recoveryCodes)
	hashes := make([]string, 0, f.recoveryCodes)
	for i := 0; i < f.recoveryCodes; i++ {
		code, err := randomRecoveryCode()
		if err != nil {
			return nil, nil, err
		}
		hash, err := bcrypt.GenerateFromPassword([]byte(code), f.bcryptCost)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to hash recovery code: %w", err)
		}
		codes = append(codes, code)
		hashes = append(hashes, string(hash))
	}
	return codes, hashes, nil
}

func randomRecoveryCode() (string, error) {
	alphabetSize := big.NewInt(int64(len(recoveryCodeAlpha)))
	out := make([]byte, 0, recoveryCodeHalfLen*2+1)
	for i := 0; i < recoveryCodeHalfLen*2; i++ {
		if i == recoveryCodeHalfLen {
			out = append(out, '-')
		}
		n, err := rand.Int(rand.Reader, alphabetSize)
		if err != nil {
			return "", fmt.Errorf("failed to generate recovery code: %w", err)
		}
		out = append(out, recoveryCodeAlpha[n.Int64()])
	}
	return string(out), nil
}

func (f *MFAFlowImpl) Recover(ctx context.Context, actor Actor, req *dto.RecoverRequest, metadata *ClientMetadata) (*dto.TokenPairResponse, error) {
	code := strings.ToLower(strings.TrimSpace(req.Code))
	if code == "" {
		return nil, validationError("Recovery code is required")
	}

	verified := models.FactorStatusVerified
	factors, err := f.factorRepo.ByFilter(ctx, models.MFAFactorFilter{UserID: &actor.UserID, Status: &verified}, "created_at ASC", 0, 0)
	if err != nil {
		return nil, err
	}

	for _, factor := range factors {
		for i, hash := range factor.RecoveryCodeHashes {
			if bcrypt.CompareHashAndPassword([]byte(hash), []byte(code)) != nil {
				continue
			}
			remaining := make([]string, 0, len(factor.RecoveryCodeHashes)-1)
			remaining = append(remaining, factor.RecoveryCodeHashes[:i]...)
			remaining = append(remaining, factor.RecoveryCodeHashes[i+1:]...)
			factor.RecoveryCodeHashes = remaining
			factor.UpdatedAt = f.now()
			if err := f.factorRepo.Update(ctx, factor); err != nil {
				return nil, err
			}

			f.activity.Record(ctx, actor, models.ActivityMFAVerified, models.ObjectTypeFactor, factor.ID.String(),
				map[string]any{"method": "recovery_code", "remaining": len(remaining)}, metadata)
			return f.issueAAL2(ctx, actor)
		}
	}

	return nil, NewBusinessError(CodeInvalidRecoveryCode, "Invalid recovery code", ErrInvalidRecoveryCode)
}

func (f *MFAFlowImpl) ListFactors(ctx context.Context, actor Actor) (*dto.FactorsResponse, error) {
	factors, err := f.factorRepo.ByFilter(ctx, models.MFAFactorFilter{UserID: &actor.UserID}, "created_at ASC", 0, 0)
	if err != nil {
		return nil, err
	}
	if factors == nil {
		factors = []*models.MFAFactor{}
	}
	return &dto.FactorsResponse{Factors: factors}, nil
}

func (f *MFAFlowImpl) Unenroll(ctx context.Context, actor Actor, factorID string, metadata *ClientMetadata) error {
	if !actor.HasAAL2() {
		return NewBusinessError(CodeMFARequired, "Two-factor verification required", ErrForbidden)
	}

	factor, err := f.ownedFactor(ctx, actor, factorID)
	if err != nil {
		return err
	}

	deleted, err := f.factorRepo.DeleteByID(ctx, factor.ID)
	if err != nil {
		return err
	}
	if !deleted {
		return NewBusinessError(CodeFactorNotFound, "Factor not found", ErrFactorNotFound)
	}

	f.activity.Record(ctx, actor, models.ActivityMFAUnenrolled, models.ObjectTypeFactor, factor.ID.String(), nil, metadata)
	return nil
}

// AAL reports the session level and the level reachable with an enrolled factor
func (f *MFAFlowImpl) AAL(ctx context.Context, actor Actor) (*dto.AALResponse, error) {
	current := actor.AAL
	if current != models.AAL2 {
		current = models.AAL1
	}

	hasFactor, err := f.hasVerifiedFactor(ctx, actor)
	if err != nil {
		return nil, err
	}

	next := models.AAL1
	if hasFactor {
		next = models.AAL2
	}
	return &dto.AALResponse{CurrentLevel: current, NextLevel: next}, nil
}

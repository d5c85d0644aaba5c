// Package services contains server-side business logic: account
// registration, pattern verification, credential replacement and
// session management.
package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/dmitrijs2005/clickpass/internal/common"
	"github.com/dmitrijs2005/clickpass/internal/cryptox"
	"github.com/dmitrijs2005/clickpass/internal/dbx"
	"github.com/dmitrijs2005/clickpass/internal/logging"
	"github.com/dmitrijs2005/clickpass/internal/pattern"
	"github.com/dmitrijs2005/clickpass/internal/server/models"
	"github.com/dmitrijs2005/clickpass/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/clickpass/internal/server/throttle"
)

// ImageSigner turns a stored profile image key into a download URL.
type ImageSigner interface {
	PresignGet(ctx context.Context, key string) (string, error)
}

// Settings are the matching parameters of the server.
type Settings struct {
	Tolerance    float64
	MinClicks    int
	MaxClicks    int
	MinNewClicks int
	// Bounds is the intrinsic size of the reference image; zero disables
	// the range check on incoming points.
	Bounds pattern.Dimensions
}

func (s Settings) attemptLimits() pattern.Limits {
	return pattern.Limits{Min: 1, Max: s.MaxClicks}
}

func (s Settings) registerLimits() pattern.Limits {
	return pattern.Limits{Min: s.MinClicks, Max: s.MaxClicks, Bounds: s.Bounds}
}

func (s Settings) newLimits() pattern.Limits {
	return pattern.Limits{Min: s.MinNewClicks, Max: s.MaxClicks, Bounds: s.Bounds}
}

// Profile is the public view of a user.
type Profile struct {
	User     *models.User
	ImageURL string
}

// AuthResult is returned by Register and Verify.
type AuthResult struct {
	Profile *Profile
	Session *IssuedSession
}

// UserService hosts the pattern matcher and the credential store.
type UserService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	sessions    *SessionService
	sealer      *cryptox.Sealer
	limiter     throttle.Limiter
	images      ImageSigner
	settings    Settings
	now         func() time.Time
	log         logging.Logger

	// decoy is a sealed credential owned by nobody, checked when the
	// username is unknown.
	decoy []byte
}

// decoyOwner is never a user ID: user IDs are random v4 UUIDs.
const decoyOwner = "00000000-0000-0000-0000-000000000000"

func NewUserService(db *sql.DB, m repomanager.RepositoryManager, sessions *SessionService, sealer *cryptox.Sealer,
	limiter throttle.Limiter, images ImageSigner, settings Settings, log logging.Logger) *UserService {
	s := &UserService{
		db:          db,
		repomanager: m,
		sessions:    sessions,
		sealer:      sealer,
		limiter:     limiter,
		images:      images,
		settings:    settings,
		now:         time.Now,
		log:         log.With("module", "users"),
	}
	s.decoy = s.sealDecoy()
	return s
}

func (s *UserService) sealDecoy() []byte {
	if s.sealer == nil {
		return nil
	}
	p := make(pattern.Pattern, max(s.settings.MaxClicks, 1))
	for i := range p {
		p[i] = pattern.Point{X: math.MaxFloat64, Y: math.MaxFloat64}
	}
	sealed, err := s.sealer.Seal(decoyOwner, p)
	if err != nil {
		return nil
	}
	return sealed
}

// verifyDecoy repeats the credential lookup, unsealing and comparison of a
// real check against the decoy. The outcome is discarded.
func (s *UserService) verifyDecoy(ctx context.Context, attempt pattern.Pattern) {
	_, _ = s.repomanager.Credentials(s.db).Get(ctx, decoyOwner)
	if s.decoy == nil {
		return
	}
	stored, err := s.sealer.Open(decoyOwner, s.decoy)
	if err != nil || len(stored) < len(attempt) {
		return
	}
	_ = pattern.Matches(stored[:len(attempt)], attempt, s.settings.Tolerance)
}

// Register creates the user, its credential and a first session in one
// transaction. A taken username yields common.ErrUsernameTaken and
// leaves nothing behind.
func (s *UserService) Register(ctx context.Context, username string, p pattern.Pattern) (*AuthResult, error) {
	username, err := common.NormalizeUsername(username)
	if err != nil {
		return nil, err
	}
	if err := pattern.Validate(p, s.settings.registerLimits()); err != nil {
		return nil, err
	}

	res, err := dbx.InTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) (*AuthResult, error) {
		user, err := s.repomanager.Users(tx).Create(ctx, &models.User{UserName: username})
		if err != nil {
			if errors.Is(err, common.ErrUsernameTaken) {
				return nil, err
			}
			return nil, fmt.Errorf("create user: %w", err)
		}

		sealed, err := s.sealer.Seal(user.ID, p)
		if err != nil {
			return nil, fmt.Errorf("seal pattern: %w", err)
		}
		cred := &models.Credential{UserID: user.ID, Sealed: sealed, Points: len(p)}
		if err := s.repomanager.Credentials(tx).Create(ctx, cred); err != nil {
			return nil, fmt.Errorf("create credential: %w", err)
		}

		issued, err := s.sessions.Issue(ctx, tx, user.ID)
		if err != nil {
			return nil, err
		}
		return &AuthResult{Profile: &Profile{User: user}, Session: issued}, nil
	})
	if err != nil {
		return nil, err
	}

	s.log.Info(ctx, "user registered", "user_id", res.Profile.User.ID, "points", len(p))
	return res, nil
}

// Verify checks attempt against the stored credential of username. Unknown
// users and wrong patterns are indistinguishable: both are
// common.ErrInvalidCredentials and both count towards the throttle.
func (s *UserService) Verify(ctx context.Context, username string, attempt pattern.Pattern) (*AuthResult, error) {
	username, err := common.NormalizeUsername(username)
	if err != nil {
		return nil, common.ErrInvalidCredentials
	}
	if err := pattern.Validate(attempt, s.settings.attemptLimits()); err != nil {
		return nil, err
	}

	key := "verify:" + username
	if err := s.limiter.Allow(ctx, key); err != nil {
		return nil, err
	}

	user, stored, err := s.loadCredential(ctx, username)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			s.verifyDecoy(ctx, attempt)
			s.recordFailure(ctx, key)
			return nil, common.ErrInvalidCredentials
		}
		return nil, err
	}

	if !pattern.Matches(stored, attempt, s.settings.Tolerance) {
		s.recordFailure(ctx, key)
		s.log.Info(ctx, "verification failed", "user_id", user.ID)
		return nil, common.ErrInvalidCredentials
	}
	s.resetFailures(ctx, key)

	now := s.now().UTC()
	issued, err := dbx.InTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) (*IssuedSession, error) {
		if err := s.repomanager.Users(tx).TouchLastLogin(ctx, user.ID, now); err != nil {
			return nil, err
		}
		return s.sessions.Issue(ctx, tx, user.ID)
	})
	if err != nil {
		return nil, err
	}
	user.LastLogin = &now

	s.log.Info(ctx, "user logged in", "user_id", user.ID)
	return &AuthResult{Profile: s.profile(ctx, user), Session: issued}, nil
}

func (s *UserService) loadCredential(ctx context.Context, username string) (*models.User, pattern.Pattern, error) {
	user, err := s.repomanager.Users(s.db).GetByUsername(ctx, username)
	if err != nil {
		return nil, nil, err
	}
	cred, err := s.repomanager.Credentials(s.db).Get(ctx, user.ID)
	if err != nil {
		return nil, nil, err
	}
	stored, err := s.sealer.Open(user.ID, cred.Sealed)
	if err != nil {
		return nil, nil, fmt.Errorf("open credential of %s: %w", user.ID, err)
	}
	return user, stored, nil
}

// ChangeCredential replaces the credential of userID after re-verifying
// current against the stored one under a row lock. A mismatch yields
// common.ErrVerificationFailed and changes nothing.
func (s *UserService) ChangeCredential(ctx context.Context, userID string, current, next pattern.Pattern) error {
	if err := pattern.Validate(current, s.settings.attemptLimits()); err != nil {
		return err
	}
	if err := pattern.Validate(next, s.settings.newLimits()); err != nil {
		return err
	}

	key := "change:" + userID
	if err := s.limiter.Allow(ctx, key); err != nil {
		return err
	}

	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		creds := s.repomanager.Credentials(tx)

		cred, err := creds.GetForUpdate(ctx, userID)
		if err != nil {
			return err
		}
		stored, err := s.sealer.Open(userID, cred.Sealed)
		if err != nil {
			return fmt.Errorf("open credential of %s: %w", userID, err)
		}
		if !pattern.Matches(stored, current, s.settings.Tolerance) {
			return common.ErrVerificationFailed
		}

		sealed, err := s.sealer.Seal(userID, next)
		if err != nil {
			return fmt.Errorf("seal pattern: %w", err)
		}
		return creds.Replace(ctx, &models.Credential{UserID: userID, Sealed: sealed, Points: len(next)})
	})
	if err != nil {
		if errors.Is(err, common.ErrVerificationFailed) {
			s.recordFailure(ctx, key)
		}
		return err
	}

	s.resetFailures(ctx, key)
	s.log.Info(ctx, "credential replaced", "user_id", userID, "points", len(next))
	return nil
}

// GetProfile returns the profile of userID, with a presigned image URL
// when a profile image is stored.
func (s *UserService) GetProfile(ctx context.Context, userID string) (*Profile, error) {
	user, err := s.repomanager.Users(s.db).GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.profile(ctx, user), nil
}

// profile never fails: a signing problem only drops the image URL.
func (s *UserService) profile(ctx context.Context, user *models.User) *Profile {
	p := &Profile{User: user}
	if user.ProfileImageKey == "" || s.images == nil {
		return p
	}
	url, err := s.images.PresignGet(ctx, user.ProfileImageKey)
	if err != nil {
		s.log.Warn(ctx, "cannot presign profile image", "user_id", user.ID, "error", err)
		return p
	}
	p.ImageURL = url
	return p
}

func (s *UserService) recordFailure(ctx context.Context, key string) {
	if err := s.limiter.Fail(ctx, key); err != nil {
		s.log.Error(ctx, "throttle: cannot record failure", "key", key, "error", err)
	}
}

func (s *UserService) resetFailures(ctx context.Context, key string) {
	if err := s.limiter.Reset(ctx, key); err != nil {
		s.log.Error(ctx, "throttle: cannot reset", "key", key, "error", err)
	}
}

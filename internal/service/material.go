package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/studyzone/studyzone-api/internal/domain/model"
)

// ErrInvalidDownloadToken is returned when a download token fails
// verification or has expired.
var ErrInvalidDownloadToken = errors.New("invalid or expired download token")

// materialStore is satisfied by *data.MaterialRepo.
type materialStore interface {
	Create(ctx context.Context, req *model.CreateMaterialRequest) (*model.Material, error)
	GetByID(ctx context.Context, id string) (*model.Material, error)
	List(ctx context.Context, opts model.MaterialsListOptions) ([]*model.Material, error)
	Update(ctx context.Context, id string, req model.UpdateMaterialRequest) (*model.Material, error)
	Delete(ctx context.Context, id string) (bool, error)
}

// objectStore holds the material bytes. Satisfied by *storage.S3Store.
type objectStore interface {
	Put(ctx context.Context, filename, contentType string, size int64, r io.Reader) (string, error)
	PresignGet(ctx context.Context, key string) (string, error)
	Delete(ctx context.Context, key string) error
}

// enrollmentChecker gates downloads on course membership.
type enrollmentChecker interface {
	Exists(ctx context.Context, studentID, courseID string) (bool, error)
}

// MaterialServiceOptions groups dependencies for MaterialService.
type MaterialServiceOptions struct {
	Materials   materialStore
	Objects     objectStore
	Enrollments enrollmentChecker
	Points      pointsAwarder // optional

	// TokenSecret signs download tokens. TokenTTL defaults to 5 minutes.
	TokenSecret []byte
	TokenTTL    time.Duration

	Logger *slog.Logger
}

// MaterialService manages course material metadata and brokered access to
// the underlying files. Downloads are a two-step flow: an enrollment-checked
// signed token, then token redemption for a presigned object URL.
type MaterialService struct {
	materials   materialStore
	objects     objectStore
	enrollments enrollmentChecker
	points      pointsAwarder
	tokenSecret []byte
	tokenTTL    time.Duration
	log         *slog.Logger
}

// NewMaterialService constructs a new MaterialService.
func NewMaterialService(opts MaterialServiceOptions) (*MaterialService, error) {
	if opts.Materials == nil {
		return nil, errors.New("material store is required")
	}
	if opts.Objects == nil {
		return nil, errors.New("object store is required")
	}
	if opts.Enrollments == nil {
		return nil, errors.New("enrollment checker is required")
	}
	if len(opts.TokenSecret) == 0 {
		return nil, errors.New("download token secret is required")
	}

	ttl := opts.TokenTTL
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	log := opts.Logger
	if log == nil {
		log = slog.Default()
	}

	return &MaterialService{
		materials:   opts.Materials,
		objects:     opts.Objects,
		enrollments: opts.Enrollments,
		points:      opts.Points,
		tokenSecret: opts.TokenSecret,
		tokenTTL:    ttl,
		log:         log.With("component", "material_service"),
	}, nil
}

// Upload stores the file bytes and creates the material row in one step.
func (s *MaterialService) Upload(
	ctx context.Context,
	req *model.CreateMaterialRequest,
	filename, contentType string,
	size int64,
	r io.Reader,
) (*model.Material, error) {
	if req == nil {
		return nil, errors.New("create material request is required")
	}

	key, err := s.objects.Put(ctx, filename, contentType, size, r)
	if err != nil {
		return nil, fmt.Errorf("store material file: %w", err)
	}

	req.FilePath = key
	req.FileSize = &size
	material, err := s.materials.Create(ctx, req)
	if err != nil {
		// Metadata failed; do not leak the orphaned object.
		if delErr := s.objects.Delete(ctx, key); delErr != nil {
			s.log.ErrorContext(ctx, "orphaned material object cleanup failed",
				"key", key, "error", delErr)
		}
		return nil, err
	}
	return material, nil
}

// GetByID returns material metadata by id.
func (s *MaterialService) GetByID(ctx context.Context, id string) (*model.Material, error) {
	return s.materials.GetByID(ctx, id)
}

// ListForCourse returns a course's materials, newest first.
func (s *MaterialService) ListForCourse(ctx context.Context, courseID string, limit, offset int) ([]*model.Material, error) {
	return s.materials.List(ctx, model.MaterialsListOptions{
		CourseID: &courseID,
		Limit:    limit,
		Offset:   offset,
	})
}

// Update applies partial updates to material metadata.
func (s *MaterialService) Update(ctx context.Context, id string, req model.UpdateMaterialRequest) (*model.Material, error) {
	return s.materials.Update(ctx, id, req)
}

// Delete removes the material row and its stored object. The object delete
// is best-effort once the row is gone.
func (s *MaterialService) Delete(ctx context.Context, id string) (bool, error) {
	material, err := s.materials.GetByID(ctx, id)
	if err != nil {
		return false, err
	}

	deleted, err := s.materials.Delete(ctx, id)
	if err != nil || !deleted {
		return deleted, err
	}

	if material.FilePath != nil {
		if delErr := s.objects.Delete(ctx, *material.FilePath); delErr != nil {
			s.log.ErrorContext(ctx, "material object delete failed",
				"material_id", id, "error", delErr)
		}
	}
	return true, nil
}

// downloadClaims is the payload of a material download token.
type downloadClaims struct {
	MaterialID string `json:"mid"`
	jwt.RegisteredClaims
}

// IssueDownloadToken checks that the student may access the material and
// returns a short-lived signed token for it. Admins bypass the enrollment
// check.
func (s *MaterialService) IssueDownloadToken(ctx context.Context, studentID, materialID string, isAdmin bool) (string, error) {
	material, err := s.materials.GetByID(ctx, materialID)
	if err != nil {
		return "", err
	}
	if material.FilePath == nil {
		return "", fmt.Errorf("material %s has no stored file", materialID)
	}

	if !isAdmin {
		enrolled, err := s.enrollments.Exists(ctx, studentID, material.CourseID)
		if err != nil {
			return "", fmt.Errorf("check enrollment: %w", err)
		}
		if !enrolled {
			return "", fmt.Errorf("student %s is not enrolled in course %s", studentID, material.CourseID)
		}
	}

	now := time.Now()
	claims := downloadClaims{
		MaterialID: materialID,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   studentID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.tokenTTL)),
		},
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.tokenSecret)
	if err != nil {
		return "", fmt.Errorf("sign download token: %w", err)
	}
	return token, nil
}

// RedeemDownloadToken verifies a download token and returns a presigned URL
// for the material's file. Credits download points best-effort.
func (s *MaterialService) RedeemDownloadToken(ctx context.Context, token string) (string, error) {
	var claims downloadClaims
	parsed, err := jwt.ParseWithClaims(token, &claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return s.tokenSecret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil || !parsed.Valid {
		return "", ErrInvalidDownloadToken
	}

	material, err := s.materials.GetByID(ctx, claims.MaterialID)
	if err != nil {
		return "", err
	}
	if material.FilePath == nil {
		return "", fmt.Errorf("material %s has no stored file", claims.MaterialID)
	}

	url, err := s.objects.PresignGet(ctx, *material.FilePath)
	if err != nil {
		return "", fmt.Errorf("presign material url: %w", err)
	}

	if s.points != nil && claims.Subject != "" {
		if _, awardErr := s.points.Award(ctx, &model.AwardPointsRequest{
			StudentID: claims.Subject,
			Delta:     pointsForDownload,
			Reason:    "material download",
		}); awardErr != nil {
			s.log.ErrorContext(ctx, "points award failed",
				"student_id", claims.Subject, "reason", "material download", "error", awardErr)
		}
	}

	return url, nil
}

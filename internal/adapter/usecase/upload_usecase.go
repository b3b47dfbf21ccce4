package usecase

import (
	"context"
	"errors"
	"path"
	"strings"

	"github.com/google/uuid"

	"videoab/internal/core/domain"
	"videoab/internal/core/port"
)

const (
	maxFileNameLen = 255
	maxExtLen      = 10
)

// UploadUseCase implements port.UploadUseCase. Media bytes never pass
// through the service; clients upload straight to the bucket with the
// returned grant and then attach its locator to a variant.
type UploadUseCase struct {
	signer port.UploadSigner
	policy Policy
	deps
}

// NewUploadUseCase wires the upload grants. signer may be nil when no
// bucket is configured, in which case every request fails with
// *domain.DependencyError.
func NewUploadUseCase(signer port.UploadSigner, policy Policy, opts ...Option) *UploadUseCase {
	return &UploadUseCase{signer: signer, policy: policy, deps: newDeps(opts)}
}

var _ port.UploadUseCase = (*UploadUseCase)(nil)

// RequestUpload returns a presigned upload slot for a video or thumbnail.
func (u *UploadUseCase) RequestUpload(ctx context.Context, req domain.UploadRequest) (*domain.UploadGrant, error) {
	grant, err := u.requestUpload(ctx, req)
	result := "granted"
	if err != nil {
		result = "failed"
	}
	kind := string(req.Kind)
	if !req.Kind.Valid() {
		kind = "invalid"
	}
	u.metrics.Upload(kind, result)
	return grant, err
}

func (u *UploadUseCase) requestUpload(ctx context.Context, req domain.UploadRequest) (*domain.UploadGrant, error) {
	if err := validateUpload(req); err != nil {
		return nil, err
	}
	if u.signer == nil {
		return nil, &domain.DependencyError{Dependency: "object storage", Err: errors.New("no bucket configured")}
	}

	now := u.clock()
	key := u.policy.UploadKeyPrefix + string(req.Kind) + "/" + now.Format("2006/01/02") + "/" +
		uuid.NewString() + fileExt(req.FileName)
	grant, err := u.signer.PresignUpload(ctx, key, req.ContentType, u.policy.UploadURLTTL)
	if err != nil {
		return nil, &domain.DependencyError{Dependency: "object storage", Err: err}
	}
	if err := domain.ValidateLocator(grant.Locator); err != nil {
		return nil, &domain.DependencyError{Dependency: "object storage", Err: err}
	}
	u.logger.InfoContext(ctx, "upload granted", "kind", req.Kind, "locator", grant.Locator)
	return &grant, nil
}

func validateUpload(req domain.UploadRequest) error {
	verr := &domain.ValidationError{}
	var family string
	switch req.Kind {
	case domain.MediaVideo:
		family = "video/"
	case domain.MediaThumbnail:
		family = "image/"
	default:
		verr.Add("kind", "must be video or thumbnail")
	}
	name := strings.TrimSpace(req.FileName)
	switch {
	case name == "":
		verr.Add("fileName", "is required")
	case len(name) > maxFileNameLen:
		verr.Add("fileName", "must be at most %d characters", maxFileNameLen)
	case strings.ContainsAny(name, `/\`):
		verr.Add("fileName", "must not contain path separators")
	case !validExt(fileExt(name)):
		verr.Add("fileName", "extension must be at most %d letters or digits", maxExtLen)
	}
	ct := strings.ToLower(strings.TrimSpace(req.ContentType))
	if ct == "" {
		verr.Add("contentType", "is required")
	} else if family != "" && !strings.HasPrefix(ct, family) {
		verr.Add("contentType", "must be a %s* type for %s uploads", family, req.Kind)
	}
	return verr.Err()
}

// fileExt is the lowercased extension of the file name, dot included.
func fileExt(name string) string {
	return strings.ToLower(path.Ext(strings.TrimSpace(name)))
}

func validExt(ext string) bool {
	if ext == "" {
		return true
	}
	if len(ext) > maxExtLen+1 || len(ext) == 1 {
		return false
	}
	for _, r := range ext[1:] {
		if (r < 'a' || r > 'z') && (r < '0' || r > '9') {
			return false
		}
	}
	return true
}

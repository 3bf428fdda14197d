package service

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/myadmit/admit-backend/internal/config"
	"github.com/myadmit/admit-backend/internal/model"
	"github.com/myadmit/admit-backend/internal/repository"
	"github.com/myadmit/admit-backend/internal/storage"
	"github.com/rs/zerolog"
)

const (
	maxProfileFiles        = 10
	maxAdditionalDocuments = 5
)

// Accepted upload MIME types and the extension stored with them.
var allowedMIMETypes = map[string]string{
	"image/jpeg":      ".jpg",
	"image/png":       ".png",
	"application/pdf": ".pdf",
}

var allowedLogoTypes = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
}

// Upload describes one incoming multipart file.
type Upload struct {
	Body             io.Reader
	Size             int64
	ContentType      string
	DocumentType     model.DocumentType
	FileName         string
	OriginalFileName string
}

// FileWithURL is a stored profile file plus a signed download link.
type FileWithURL struct {
	model.ProfileFile
	URL string `json:"url"`
}

// FileListing is the response of the file listing endpoint.
type FileListing struct {
	Files          []FileWithURL `json:"files"`
	ProfilePicture *string       `json:"profile_picture"`
	CVURLSigned    *string       `json:"cv_url_signed"`
}

// FileService stores applicant documents in the blob store and keeps the
// profile's file list in sync.
type FileService struct {
	cfg      *config.Config
	profiles *ProfileService
	repo     repository.ProfileRepository
	store    storage.Store
	log      zerolog.Logger
}

func NewFileService(
	cfg *config.Config,
	profiles *ProfileService,
	repo repository.ProfileRepository,
	store storage.Store,
	log zerolog.Logger,
) *FileService {
	return &FileService{
		cfg:      cfg,
		profiles: profiles,
		repo:     repo,
		store:    store,
		log:      log.With().Str("component", "file_service").Logger(),
	}
}

// Upload stores a profile document and returns its signed URL. A previous file
// of the same document type is replaced, except for additional documents.
func (s *FileService) Upload(ctx context.Context, userID uuid.UUID, email string, up *Upload) (string, error) {
	ext, ok := allowedMIMETypes[up.ContentType]
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrUnsupportedFile, up.ContentType)
	}
	if !up.DocumentType.Valid() {
		return "", fmt.Errorf("%w: %s", ErrInvalidDocumentType, up.DocumentType)
	}
	if up.Size > s.cfg.MaxUploadBytes {
		return "", fmt.Errorf("%w: %d bytes (max: %d)", ErrFileTooLarge, up.Size, s.cfg.MaxUploadBytes)
	}

	profile, err := s.profiles.GetOrCreate(ctx, userID, email)
	if err != nil {
		return "", err
	}

	var replaced *model.ProfileFile
	if up.DocumentType == model.DocAdditionalDocument {
		if profile.CountFiles(model.DocAdditionalDocument) >= maxAdditionalDocuments {
			return "", ErrAdditionalDocsReached
		}
	} else if existing := profile.FileOfType(up.DocumentType); existing != nil {
		copied := *existing
		replaced = &copied
	}
	if replaced == nil && len(profile.Files) >= maxProfileFiles {
		return "", ErrFileLimitReached
	}

	key, err := randomHex(32)
	if err != nil {
		return "", fmt.Errorf("generate object key: %w", err)
	}
	if err := s.store.Put(ctx, key, up.Body, up.Size, up.ContentType); err != nil {
		return "", err
	}

	originalName := up.OriginalFileName
	if originalName == "" {
		originalName = up.FileName
	}
	if fileExt := filepath.Ext(originalName); fileExt != "" {
		ext = strings.ToLower(fileExt)
	}

	record := model.ProfileFile{
		ID:               uuid.New(),
		FileName:         up.FileName,
		OriginalFileName: originalName,
		DocumentType:     up.DocumentType,
		MimeType:         up.ContentType,
		FileSize:         up.Size,
		FileExtension:    ext,
		StorageKey:       key,
		UploadedAt:       time.Now().UTC(),
	}

	if replaced != nil {
		files := profile.Files[:0]
		for _, f := range profile.Files {
			if f.ID != replaced.ID {
				files = append(files, f)
			}
		}
		profile.Files = files
	}
	profile.Files = append(profile.Files, record)

	if err := s.repo.Save(ctx, profile); err != nil {
		_ = s.store.Delete(ctx, key)
		return "", fmt.Errorf("save profile files: %w", err)
	}

	if replaced != nil {
		if err := s.store.Delete(ctx, replaced.StorageKey); err != nil {
			s.log.Warn().Err(err).Str("key", replaced.StorageKey).Msg("Failed to delete replaced file")
		}
	}

	return s.store.SignedURL(ctx, key)
}

// List returns every profile file with a signed URL.
func (s *FileService) List(ctx context.Context, userID uuid.UUID, email string) (*FileListing, error) {
	profile, err := s.profiles.GetOrCreate(ctx, userID, email)
	if err != nil {
		return nil, err
	}

	keys := make([]string, len(profile.Files))
	for i, f := range profile.Files {
		keys[i] = f.StorageKey
	}
	urls, err := storage.SignAll(ctx, s.store, keys)
	if err != nil {
		return nil, fmt.Errorf("sign files: %w", err)
	}

	listing := &FileListing{Files: make([]FileWithURL, 0, len(profile.Files))}
	for _, f := range profile.Files {
		listing.Files = append(listing.Files, FileWithURL{ProfileFile: f, URL: urls[f.StorageKey]})
	}
	if f := profile.FileOfType(model.DocProfilePicture); f != nil {
		u := urls[f.StorageKey]
		listing.ProfilePicture = &u
	}
	if f := profile.FileOfType(model.DocCV); f != nil {
		u := urls[f.StorageKey]
		listing.CVURLSigned = &u
	}
	return listing, nil
}

// Delete removes a profile file record and its blob.
func (s *FileService) Delete(ctx context.Context, userID uuid.UUID, email string, fileID uuid.UUID) error {
	profile, err := s.profiles.GetOrCreate(ctx, userID, email)
	if err != nil {
		return err
	}

	idx := -1
	for i, f := range profile.Files {
		if f.ID == fileID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return ErrFileNotFound
	}

	key := profile.Files[idx].StorageKey
	profile.Files = append(profile.Files[:idx], profile.Files[idx+1:]...)
	if err := s.repo.Save(ctx, profile); err != nil {
		return fmt.Errorf("save profile files: %w", err)
	}

	if err := s.store.Delete(ctx, key); err != nil {
		s.log.Warn().Err(err).Str("key", key).Msg("Failed to delete blob")
	}
	return nil
}

// UploadLogo stores a university logo image and returns its object key.
func (s *FileService) UploadLogo(ctx context.Context, body io.Reader, size int64, contentType string) (string, error) {
	ext, ok := allowedLogoTypes[contentType]
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrUnsupportedFile, contentType)
	}
	if size > s.cfg.MaxUploadBytes {
		return "", fmt.Errorf("%w: %d bytes (max: %d)", ErrFileTooLarge, size, s.cfg.MaxUploadBytes)
	}

	name, err := randomHex(16)
	if err != nil {
		return "", fmt.Errorf("generate object key: %w", err)
	}
	key := "logos/" + name + ext
	if err := s.store.Put(ctx, key, body, size, contentType); err != nil {
		return "", err
	}
	return key, nil
}

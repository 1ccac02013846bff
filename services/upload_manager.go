package services

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"

	"applyflow/utils"
)

// MaxDocumentCount caps the supporting documents held by one wizard session.
const MaxDocumentCount = 3

// UploadedDocument tracks one stored object for the duration of a wizard
// session. On submission its PublicURL is frozen into the application record;
// on abandonment the object is deleted.
type UploadedDocument struct {
	FileName   string `json:"file_name"`
	StorageKey string `json:"storage_key"`
	PublicURL  string `json:"public_url"`
	Size       int64  `json:"size"`
}

// FileUpload is an intake candidate: metadata plus the bytes to store.
type FileUpload struct {
	FileMetadata
	Content []byte
}

// IngestResult reports the fate of a single file from an Ingest batch.
type IngestResult struct {
	FileName string            `json:"file_name"`
	Accepted bool              `json:"accepted"`
	Kind     OutcomeKind       `json:"kind,omitempty"`
	Reason   string            `json:"reason,omitempty"`
	Document *UploadedDocument `json:"document,omitempty"`
}

// UploadManager owns document bookkeeping for one wizard session. Files are
// processed sequentially, so slot accounting needs no locking; batches are
// small and user-driven.
type UploadManager struct {
	store         DocumentStore
	actorID       uuid.UUID
	opportunityID uuid.UUID
	documents     []UploadedDocument
	now           func() time.Time
}

func NewUploadManager(store DocumentStore, actorID, opportunityID uuid.UUID) *UploadManager {
	return &UploadManager{
		store:         store,
		actorID:       actorID,
		opportunityID: opportunityID,
		now:           time.Now,
	}
}

// Documents returns a copy of the held document list, in upload order.
func (m *UploadManager) Documents() []UploadedDocument {
	out := make([]UploadedDocument, len(m.documents))
	copy(out, m.documents)
	return out
}

// DocumentURLs returns the public URLs of held documents, in upload order.
func (m *UploadManager) DocumentURLs() []string {
	urls := make([]string, 0, len(m.documents))
	for _, doc := range m.documents {
		urls = append(urls, doc.PublicURL)
	}
	return urls
}

// Ingest processes a batch of files one at a time. Files beyond the remaining
// slot count are rejected with a capacity warning; a file that fails
// validation or upload does not block its siblings.
func (m *UploadManager) Ingest(files []FileUpload) []IngestResult {
	results := make([]IngestResult, 0, len(files))
	for _, file := range files {
		if len(m.documents) >= MaxDocumentCount {
			results = append(results, IngestResult{
				FileName: file.Name,
				Kind:     OutcomeValidation,
				Reason:   fmt.Sprintf("you can attach at most %d documents", MaxDocumentCount),
			})
			continue
		}
		results = append(results, m.ingestOne(file))
	}
	return results
}

func (m *UploadManager) ingestOne(file FileUpload) IngestResult {
	if result := ValidateFile(file.FileMetadata); !result.Valid {
		return IngestResult{FileName: file.Name, Kind: OutcomeValidation, Reason: result.Reason}
	}

	key := m.storageKey(file.Name)
	contentType := file.MediaType
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	url, err := m.store.Put(key, file.Content, contentType)
	if err != nil {
		utils.LogError("document upload failed", err, map[string]string{"file": file.Name})
		return IngestResult{FileName: file.Name, Kind: OutcomeUpload, Reason: fmt.Sprintf("failed to upload %s", file.Name)}
	}

	doc := UploadedDocument{
		FileName:   file.Name,
		StorageKey: key,
		PublicURL:  url,
		Size:       file.Size,
	}
	m.documents = append(m.documents, doc)
	return IngestResult{FileName: file.Name, Accepted: true, Document: &doc}
}

// Remove deletes a document from storage, then drops it from local state.
// Storage goes first so the local list never references a deleted object;
// on delete failure the document stays listed and the error is returned.
func (m *UploadManager) Remove(doc UploadedDocument) error {
	if err := m.store.Delete(doc.StorageKey); err != nil {
		return err
	}
	for i, held := range m.documents {
		if held.StorageKey == doc.StorageKey {
			m.documents = append(m.documents[:i], m.documents[i+1:]...)
			break
		}
	}
	return nil
}

// RemoveByKey removes the held document with the given storage key.
func (m *UploadManager) RemoveByKey(key string) error {
	for _, held := range m.documents {
		if held.StorageKey == key {
			return m.Remove(held)
		}
	}
	return fmt.Errorf("no uploaded document with key %s", key)
}

// DownloadLink returns a short-lived signed URL for a held document. The key
// must belong to this session; permanent public URLs stay out of responses
// once the document is attached.
func (m *UploadManager) DownloadLink(key string) (string, error) {
	for _, held := range m.documents {
		if held.StorageKey == key {
			return m.store.GeneratePresignedURL(key)
		}
	}
	return "", fmt.Errorf("no uploaded document with key %s", key)
}

// Cleanup deletes every held document, used when a dirty wizard session is
// abandoned so storage is not left with orphaned objects. Deletion failures
// are logged and skipped; the remaining documents are still attempted.
func (m *UploadManager) Cleanup() {
	remaining := m.documents[:0]
	for _, doc := range m.documents {
		if err := m.store.Delete(doc.StorageKey); err != nil {
			utils.LogError("failed to clean up uploaded document", err, map[string]string{"key": doc.StorageKey})
			remaining = append(remaining, doc)
		}
	}
	m.documents = remaining
}

var disallowedKeyChars = regexp.MustCompile(`[^a-zA-Z0-9.-]`)

// SanitizeFilename rewrites a filename into a storage-safe form: whitespace
// becomes dashes and anything outside [a-zA-Z0-9.-] is stripped.
func SanitizeFilename(name string) string {
	name = strings.Join(strings.Fields(name), "-")
	return disallowedKeyChars.ReplaceAllString(name, "")
}

// storageKey scopes an object by actor and opportunity, with a timestamp to
// avoid collisions between same-named files.
func (m *UploadManager) storageKey(filename string) string {
	return fmt.Sprintf("%s/%s/%d-%s", m.actorID, m.opportunityID, m.now().UnixMilli(), SanitizeFilename(filename))
}

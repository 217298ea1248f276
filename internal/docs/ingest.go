// Package docs turns uploaded intervention grids into message-part
// references or extracted text for the chat core.
package docs

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"log"
	"path"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/rsherod/DCI691Build2-InterventionSearcher/internal/chat"
)

const pdfMIMEType = "application/pdf"

// uploadCacheSize bounds the digest→reference cache. Grids are small; this
// mostly guards against re-uploading the same file on every form tweak.
const uploadCacheSize = 128

// Uploader pushes a document to the model provider's file store and returns
// the opaque reference used in message parts.
type Uploader interface {
	Upload(ctx context.Context, r io.Reader, name, mimeType string) (chat.DocumentRef, error)
}

// Archiver keeps a copy of uploaded documents in object storage. Optional;
// archive failures never block ingestion.
type Archiver interface {
	Put(ctx context.Context, key string, content []byte) error
}

// Ingestor uploads reference documents exactly once per content digest.
type Ingestor struct {
	uploader Uploader
	archive  Archiver
	cache    *lru.Cache[string, chat.DocumentRef]
	log      *log.Logger
}

func NewIngestor(uploader Uploader, archive Archiver, logger *log.Logger) (*Ingestor, error) {
	if uploader == nil {
		return nil, fmt.Errorf("uploader is required")
	}
	if logger == nil {
		logger = log.Default()
	}
	cache, err := lru.New[string, chat.DocumentRef](uploadCacheSize)
	if err != nil {
		return nil, err
	}
	return &Ingestor{uploader: uploader, archive: archive, cache: cache, log: logger}, nil
}

// IngestPDF uploads a PDF and returns its opaque reference. Content already
// uploaded in this process is served from the cache without another upload.
func (i *Ingestor) IngestPDF(ctx context.Context, sessionID, name string, content []byte) (chat.DocumentRef, error) {
	if len(content) == 0 {
		return chat.DocumentRef{}, fmt.Errorf("document %s is empty", name)
	}
	digest := contentDigest(content)
	if ref, ok := i.cache.Get(digest); ok {
		return ref, nil
	}

	ref, err := i.uploader.Upload(ctx, bytes.NewReader(content), name, pdfMIMEType)
	if err != nil {
		return chat.DocumentRef{}, err
	}
	i.cache.Add(digest, ref)

	if i.archive != nil {
		key := path.Join(sessionID, digest[:12]+"-"+name)
		if err := i.archive.Put(ctx, key, content); err != nil {
			i.log.Printf("document archive failed (%s): %v", key, err)
		}
	}
	return ref, nil
}

func contentDigest(content []byte) string {
	sum := sha256.Sum256(content)
	return hex.EncodeToString(sum[:])
}

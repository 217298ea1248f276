package docs

import (
	"context"
	"errors"
	"io"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/rsherod/DCI691Build2-InterventionSearcher/internal/chat"
)

type fakeUploader struct {
	uploads int
	err     error
}

func (f *fakeUploader) Upload(_ context.Context, r io.Reader, name, mimeType string) (chat.DocumentRef, error) {
	f.uploads++
	if f.err != nil {
		return chat.DocumentRef{}, f.err
	}
	_, _ = io.ReadAll(r)
	return chat.DocumentRef{
		ID:       name,
		URI:      "files/" + name,
		MIMEType: mimeType,
		Name:     name,
	}, nil
}

type fakeArchiver struct {
	puts []string
	err  error
}

func (f *fakeArchiver) Put(_ context.Context, key string, _ []byte) error {
	f.puts = append(f.puts, key)
	return f.err
}

func TestIngestUploadsOncePerDigest(t *testing.T) {
	up := &fakeUploader{}
	ing, err := NewIngestor(up, nil, nil)
	require.NoError(t, err)

	content := []byte("%PDF-1.4 grid")
	first, err := ing.IngestPDF(context.Background(), "s1", "tier2.pdf", content)
	require.NoError(t, err)
	require.Equal(t, "files/tier2.pdf", first.URI)
	require.Equal(t, pdfMIMEType, first.MIMEType)

	second, err := ing.IngestPDF(context.Background(), "s1", "tier2.pdf", content)
	require.NoError(t, err)
	require.Equal(t, first, second)
	require.Equal(t, 1, up.uploads, "identical content must not re-upload")

	_, err = ing.IngestPDF(context.Background(), "s1", "tier3.pdf", []byte("%PDF-1.4 other"))
	require.NoError(t, err)
	require.Equal(t, 2, up.uploads)
}

func TestIngestEmptyDocumentRejected(t *testing.T) {
	ing, err := NewIngestor(&fakeUploader{}, nil, nil)
	require.NoError(t, err)
	_, err = ing.IngestPDF(context.Background(), "s1", "empty.pdf", nil)
	require.Error(t, err)
}

func TestIngestUploadErrorPropagates(t *testing.T) {
	up := &fakeUploader{err: errors.New("quota")}
	ing, err := NewIngestor(up, nil, nil)
	require.NoError(t, err)
	_, err = ing.IngestPDF(context.Background(), "s1", "tier2.pdf", []byte("x"))
	require.Error(t, err)

	// A failed upload is not cached.
	up.err = nil
	_, err = ing.IngestPDF(context.Background(), "s1", "tier2.pdf", []byte("x"))
	require.NoError(t, err)
	require.Equal(t, 2, up.uploads)
}

func TestIngestArchiveFailureIsNonFatal(t *testing.T) {
	arch := &fakeArchiver{err: errors.New("bucket gone")}
	ing, err := NewIngestor(&fakeUploader{}, arch, nil)
	require.NoError(t, err)

	_, err = ing.IngestPDF(context.Background(), "s1", "tier2.pdf", []byte("%PDF"))
	require.NoError(t, err)
	require.Len(t, arch.puts, 1)
}

package service

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/jonathan/resume-reader/internal/events"
	"github.com/jonathan/resume-reader/internal/extraction"
	"github.com/jonathan/resume-reader/internal/schemas"
	"github.com/jonathan/resume-reader/internal/store"
	"github.com/jonathan/resume-reader/internal/store/memory"
	"github.com/jonathan/resume-reader/internal/testutil"
	"github.com/jonathan/resume-reader/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingPublisher struct {
	mu     sync.Mutex
	events []events.ResumeEvent
	err    error
}

func (p *recordingPublisher) Publish(_ context.Context, e events.ResumeEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.events = append(p.events, e)
	return nil
}

func (p *recordingPublisher) Close() error { return nil }

// failingRecords wraps a memory store and fails selected operations.
type failingRecords struct {
	*memory.RecordStore
	saveErr error
	findErr error
}

func (f *failingRecords) Save(ctx context.Context, r *types.ResumeRecord) (*types.ResumeRecord, error) {
	if f.saveErr != nil {
		return nil, f.saveErr
	}
	return f.RecordStore.Save(ctx, r)
}

func (f *failingRecords) FindByID(ctx context.Context, id string) (*types.ResumeRecord, error) {
	if f.findErr != nil {
		return nil, f.findErr
	}
	return f.RecordStore.FindByID(ctx, id)
}

type failingBlobs struct {
	storeErr error
	fetchErr error
}

func (f failingBlobs) Store(context.Context, []byte, string, string) (string, error) {
	return "", f.storeErr
}

func (f failingBlobs) Fetch(context.Context, string) (*store.Blob, error) {
	return nil, f.fetchErr
}

type fixture struct {
	svc       *ResumeService
	records   *memory.RecordStore
	blobs     *memory.BlobStore
	publisher *recordingPublisher
	logs      *bytes.Buffer
}

func newFixture(t *testing.T, opts ...Option) *fixture {
	t.Helper()
	f := &fixture{
		records:   memory.NewRecordStore(),
		blobs:     memory.NewBlobStore(),
		publisher: &recordingPublisher{},
		logs:      &bytes.Buffer{},
	}
	logger := slog.New(slog.NewTextHandler(f.logs, &slog.HandlerOptions{Level: slog.LevelDebug}))
	all := append([]Option{WithPublisher(f.publisher), WithLogger(logger)}, opts...)
	f.svc = New(f.records, f.blobs, all...)
	f.svc.now = func() time.Time { return time.Date(2025, 5, 1, 9, 0, 0, 0, time.UTC) }
	return f
}

func (f *fixture) upload(t *testing.T, name string, skills ...string) *types.ResumeRecord {
	t.Helper()
	paragraphs := []string{name, "contact " + emailFor(name)}
	if len(skills) > 0 {
		line := "Skills: "
		for i, s := range skills {
			if i > 0 {
				line += ", "
			}
			line += s
		}
		paragraphs = append(paragraphs, "", line)
	}
	saved, err := f.svc.Upload(context.Background(), name+".docx", "", testutil.BuildDOCX(t, paragraphs...))
	require.NoError(t, err)
	return saved
}

func emailFor(name string) string {
	out := []byte{}
	for _, c := range []byte(name) {
		switch {
		case c == ' ':
			out = append(out, '.')
		case c >= 'A' && c <= 'Z':
			out = append(out, c+('a'-'A'))
		default:
			out = append(out, c)
		}
	}
	return string(out) + "@example.com"
}

func TestUpload_StoresParsesAndPublishes(t *testing.T) {
	f := newFixture(t)
	data := testutil.BuildDOCX(t, testutil.SampleResumeParagraphs()...)

	saved, err := f.svc.Upload(context.Background(), "jane.docx", "", data)
	require.NoError(t, err)

	assert.NotEmpty(t, saved.ID)
	assert.NotEmpty(t, saved.FileID)
	assert.Equal(t, "jane.docx", saved.FileName)
	assert.Equal(t, "Jane Doe", saved.Name)
	assert.Equal(t, []string{"Go", "PostgreSQL", "Docker"}, saved.Skills)

	stored, err := f.records.FindByID(context.Background(), saved.ID)
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.Equal(t, saved.FileID, stored.FileID)

	blob, err := f.blobs.Fetch(context.Background(), saved.FileID)
	require.NoError(t, err)
	defer blob.Body.Close()
	body, err := io.ReadAll(blob.Body)
	require.NoError(t, err)
	assert.Equal(t, data, body)
	assert.Equal(t, store.ContentTypeFor("jane.docx"), blob.ContentType)

	require.Len(t, f.publisher.events, 1)
	event := f.publisher.events[0]
	assert.Equal(t, saved.ID, event.ID)
	assert.Equal(t, "ja***@example.com", event.Email)
	assert.Equal(t, 3, event.SkillsCount)
	assert.Equal(t, time.Date(2025, 5, 1, 9, 0, 0, 0, time.UTC), event.ParsedAt)
}

func TestUpload_UnsupportedFormatYieldsDefaultRecord(t *testing.T) {
	f := newFixture(t)

	saved, err := f.svc.Upload(context.Background(), "notes.txt", "text/plain", []byte("Jane Doe\n"))
	require.NoError(t, err)
	assert.Equal(t, extraction.UnknownName, saved.Name)
	assert.Equal(t, []string{}, saved.Skills)
	assert.NotEmpty(t, saved.FileID)
}

func TestUpload_DecodeFailureKeepsBlob(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.Upload(context.Background(), "broken.pdf", "", []byte("not a pdf"))
	require.Error(t, err)

	var decodeErr *extraction.DecodeError
	assert.ErrorAs(t, err, &decodeErr)
	assert.Equal(t, 1, f.blobs.Len(), "original bytes stay stored")

	all, err := f.records.FindAll(context.Background())
	require.NoError(t, err)
	assert.Empty(t, all)
	assert.Empty(t, f.publisher.events)
	assert.Contains(t, f.logs.String(), "upload.parse.failed")
}

func TestUpload_InvalidInput(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.Upload(context.Background(), "", "", []byte("x"))
	var invalid *InvalidInputError
	require.ErrorAs(t, err, &invalid)

	_, err = f.svc.Upload(context.Background(), "cv.pdf", "", nil)
	require.ErrorAs(t, err, &invalid)
	assert.Equal(t, 0, f.blobs.Len())
}

func TestUpload_StorageFailures(t *testing.T) {
	data := testutil.BuildDOCX(t, "Jane Doe")

	t.Run("blob store", func(t *testing.T) {
		svc := New(memory.NewRecordStore(), failingBlobs{storeErr: errors.New("bucket gone")})
		_, err := svc.Upload(context.Background(), "cv.docx", "", data)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "bucket gone")
	})

	t.Run("record store", func(t *testing.T) {
		records := &failingRecords{RecordStore: memory.NewRecordStore(), saveErr: errors.New("disk full")}
		svc := New(records, memory.NewBlobStore())
		_, err := svc.Upload(context.Background(), "cv.docx", "", data)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "disk full")
	})
}

func TestUpload_PublishFailureDoesNotFailUpload(t *testing.T) {
	f := newFixture(t)
	f.publisher.err = errors.New("broker down")

	saved, err := f.svc.Upload(context.Background(), "cv.docx", "", testutil.BuildDOCX(t, "Jane Doe"))
	require.NoError(t, err)
	assert.NotEmpty(t, saved.ID)
	assert.Contains(t, f.logs.String(), "upload.publish.failed")
}

func TestUpload_WithoutValidation(t *testing.T) {
	f := newFixture(t, WithSchemaValidation(false))

	saved, err := f.svc.Upload(context.Background(), "cv.docx", "", testutil.BuildDOCX(t, "Jane Doe"))
	require.NoError(t, err)
	assert.Equal(t, "Jane Doe", saved.Name)
}

func TestSearch(t *testing.T) {
	f := newFixture(t)
	f.upload(t, "Jane Doe", "Go", "PostgreSQL")
	f.upload(t, "John Roe", "Java")

	tests := []struct {
		name  string
		query string
		want  []string
	}{
		{"empty query lists all", "", []string{"Jane Doe", "John Roe"}},
		{"whitespace query lists all", "   ", []string{"Jane Doe", "John Roe"}},
		{"name match ignores case", "JANE", []string{"Jane Doe"}},
		{"email match", "john.roe@", []string{"John Roe"}},
		{"skill match", "postgres", []string{"Jane Doe"}},
		{"joined skills match", "go, postgresql", []string{"Jane Doe"}},
		{"no match", "rust", []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			views, err := f.svc.Search(context.Background(), tt.query)
			require.NoError(t, err)
			names := []string{}
			for _, v := range views {
				names = append(names, v.Name)
			}
			assert.Equal(t, tt.want, names)
		})
	}
}

func TestSearch_ResultsAreMasked(t *testing.T) {
	f := newFixture(t)
	saved := f.upload(t, "Jane Doe", "Go")

	views, err := f.svc.Search(context.Background(), "jane")
	require.NoError(t, err)
	require.Len(t, views, 1)

	v := views[0]
	assert.Equal(t, saved.ID, v.ID)
	assert.Equal(t, "ja***@example.com", v.Email)
	assert.Equal(t, saved.FileID, v.FileID)
	assert.Equal(t, "Jane Doe.docx", v.FileName)
}

func TestSearchField(t *testing.T) {
	f := newFixture(t)
	f.upload(t, "Jane Doe", "Go")
	f.upload(t, "John Roe", "Golang")

	views, err := f.svc.SearchField(context.Background(), store.FieldSkills, "golang")
	require.NoError(t, err)
	require.Len(t, views, 1)
	assert.Equal(t, "John Roe", views[0].Name)

	_, err = f.svc.SearchField(context.Background(), "phone", "555")
	var invalid *InvalidInputError
	assert.ErrorAs(t, err, &invalid)
}

func TestMaskedViews_SchemaChecked(t *testing.T) {
	records := []*types.ResumeRecord{{Name: "Jane Doe", Email: "jane@example.com", Phone: "9876543210"}}

	_, err := newFixture(t).svc.maskedViews(records)
	var schemaErr *schemas.ValidationError
	require.ErrorAs(t, err, &schemaErr)
	assert.Equal(t, "id", schemaErr.Errors[0].Field)

	views, err := newFixture(t, WithSchemaValidation(false)).svc.maskedViews(records)
	require.NoError(t, err)
	require.Len(t, views, 1)
	assert.Equal(t, "****3210", views[0].Phone)

	records[0].ID = "r-1"
	views, err = newFixture(t).svc.maskedViews(records)
	require.NoError(t, err)
	assert.Equal(t, "ja***@example.com", views[0].Email)
}

func TestPreview(t *testing.T) {
	f := newFixture(t)
	saved, err := f.svc.Upload(context.Background(), "jane.docx", "",
		testutil.BuildDOCX(t, testutil.SampleResumeParagraphs()...))
	require.NoError(t, err)

	preview, err := f.svc.Preview(context.Background(), saved.ID)
	require.NoError(t, err)
	assert.Equal(t, "ja***@example.com", preview.Email)
	assert.Equal(t, "****4567", preview.Phone)
	assert.Equal(t, saved.Summary, preview.Summary)
	assert.Equal(t, saved.Experiences, preview.Experiences)

	stored, err := f.records.FindByID(context.Background(), saved.ID)
	require.NoError(t, err)
	assert.Equal(t, "jane.doe@example.com", stored.Email, "stored record stays unmasked")
}

func TestPreview_NotFound(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.Preview(context.Background(), "missing")
	var nf *NotFoundError
	require.ErrorAs(t, err, &nf)
	assert.Equal(t, "resume", nf.Kind)

	_, err = f.svc.Preview(context.Background(), "")
	var invalid *InvalidInputError
	assert.ErrorAs(t, err, &invalid)
}

func TestPreview_StoreError(t *testing.T) {
	records := &failingRecords{RecordStore: memory.NewRecordStore(), findErr: errors.New("conn reset")}
	svc := New(records, memory.NewBlobStore())

	_, err := svc.Preview(context.Background(), "id")
	require.Error(t, err)
	var nf *NotFoundError
	assert.False(t, errors.As(err, &nf))
}

func TestDownload(t *testing.T) {
	f := newFixture(t)
	data := testutil.BuildDOCX(t, "Jane Doe")
	saved, err := f.svc.Upload(context.Background(), "jane.docx", "", data)
	require.NoError(t, err)

	record, blob, err := f.svc.Download(context.Background(), saved.ID)
	require.NoError(t, err)
	defer blob.Body.Close()

	assert.Equal(t, saved.ID, record.ID)
	assert.Equal(t, "jane.docx", blob.FileName)
	body, err := io.ReadAll(blob.Body)
	require.NoError(t, err)
	assert.Equal(t, data, body)
}

func TestDownload_MissingFile(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	noFile, err := f.records.Save(ctx, &types.ResumeRecord{FileName: "a.pdf", Name: "A"})
	require.NoError(t, err)
	_, _, err = f.svc.Download(ctx, noFile.ID)
	var nf *NotFoundError
	require.ErrorAs(t, err, &nf)
	assert.Equal(t, "file", nf.Kind)

	dangling, err := f.records.Save(ctx, &types.ResumeRecord{FileName: "b.pdf", Name: "B", FileID: "gone"})
	require.NoError(t, err)
	_, _, err = f.svc.Download(ctx, dangling.ID)
	require.ErrorAs(t, err, &nf)
	assert.Equal(t, "gone", nf.ID)
}

func TestDownload_BlobError(t *testing.T) {
	records := memory.NewRecordStore()
	saved, err := records.Save(context.Background(), &types.ResumeRecord{Name: "A", FileID: "f"})
	require.NoError(t, err)
	svc := New(records, failingBlobs{fetchErr: errors.New("throttled")})

	_, _, err = svc.Download(context.Background(), saved.ID)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "throttled")
}

func TestGetByEmail(t *testing.T) {
	f := newFixture(t)
	f.upload(t, "Jane Doe")
	f.upload(t, "John Roe")

	found, err := f.svc.GetByEmail(context.Background(), "JANE.DOE@example.com")
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, "jane.doe@example.com", found[0].Email)

	_, err = f.svc.GetByEmail(context.Background(), " ")
	var invalid *InvalidInputError
	assert.ErrorAs(t, err, &invalid)
}

func TestErrorMessages(t *testing.T) {
	assert.Equal(t, "resume not found: 42", (&NotFoundError{Kind: "resume", ID: "42"}).Error())
	assert.Equal(t, "invalid id: id is required", (&InvalidInputError{Field: "id", Message: "id is required"}).Error())
}

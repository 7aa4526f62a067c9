package search

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sulaiman-F/wthqh-backend/internal/documents"
	"github.com/Sulaiman-F/wthqh-backend/internal/folders"
	"github.com/Sulaiman-F/wthqh-backend/internal/shared/apperr"
	"github.com/Sulaiman-F/wthqh-backend/internal/shared/auth"
	"github.com/Sulaiman-F/wthqh-backend/internal/shared/pdfinfo/pdfinfotest"
	"github.com/Sulaiman-F/wthqh-backend/internal/shared/server/middleware"
	"github.com/Sulaiman-F/wthqh-backend/internal/shared/storage/blob/local"
	"github.com/Sulaiman-F/wthqh-backend/internal/versions"
)

var (
	alice = auth.Principal{UserID: "alice", Role: auth.RoleMember}
	bob   = auth.Principal{UserID: "bob", Role: auth.RoleMember}
	admin = auth.Principal{UserID: "root", Role: auth.RoleAdmin}
)

type fixture struct {
	svc     *Service
	docs    *documents.Service
	folders *folders.Service
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	vrepo := versions.NewMemoryRepo()
	ledger := versions.NewLedger(vrepo)
	drepo := documents.NewMemoryRepo(vrepo)
	fsvc := folders.NewService(folders.NewMemoryRepo(), drepo, nil)
	blobs := local.NewWithFs(afero.NewMemMapFs())
	docs := documents.NewService(drepo, ledger, blobs, fsvc, nil)
	return &fixture{svc: NewService(docs, blobs, ledger), docs: docs, folders: fsvc}
}

func (f *fixture) upload(t *testing.T, p auth.Principal, title, fileName string) documents.Document {
	t.Helper()
	ctx := context.Background()
	folder, err := f.folders.Create(ctx, p, "Folder "+title, nil)
	require.NoError(t, err)
	payload := pdfinfotest.Build(1)
	doc, _, err := f.docs.Create(ctx, p, documents.CreateInput{
		Title:    title,
		FolderID: folder.ID,
		File: &documents.Upload{
			FileName:    fileName,
			ContentType: "application/pdf",
			Body:        bytes.NewReader(payload),
			Size:        int64(len(payload)),
		},
	})
	require.NoError(t, err)
	return doc
}

func titles(list []documents.Document) []string {
	out := make([]string, 0, len(list))
	for _, d := range list {
		out = append(out, d.Title)
	}
	return out
}

func TestSearchMetadataThenFileNames(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.upload(t, alice, "Invoice Q1", "scan-001.pdf")
	f.upload(t, alice, "Contract", "invoice-backup.pdf")
	f.upload(t, alice, "Invoice archive", "invoice-2023.pdf")
	f.upload(t, alice, "Unrelated", "notes.pdf")
	f.upload(t, bob, "Bob's invoice", "invoice-bob.pdf")

	results, err := f.svc.Search(ctx, alice, "inv")
	require.NoError(t, err)

	got := titles(results)
	require.Len(t, got, 3)
	assert.ElementsMatch(t, []string{"Invoice Q1", "Invoice archive"}, got[:2])
	assert.Equal(t, "Contract", got[2])
}

func TestSearchKeepsDottedFileNames(t *testing.T) {
	f := newFixture(t)
	f.upload(t, alice, "Contract", "invoice..backup.pdf")
	f.upload(t, alice, "Other", "invoice-backup.pdf")
	f.upload(t, alice, "Quarterly", "Q1 report...pdf")

	results, err := f.svc.Search(context.Background(), alice, "invoice")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"Contract", "Other"}, titles(results))

	results, err = f.svc.Search(context.Background(), alice, "report...")
	require.NoError(t, err)
	assert.Equal(t, []string{"Quarterly"}, titles(results))
}

func TestSearchAdminSeesEveryOwner(t *testing.T) {
	f := newFixture(t)
	f.upload(t, alice, "Invoice Q1", "a.pdf")
	f.upload(t, bob, "Receipt", "invoice-bob.pdf")

	results, err := f.svc.Search(context.Background(), admin, "INVOICE")
	require.NoError(t, err)
	assert.Equal(t, []string{"Invoice Q1", "Receipt"}, titles(results))
}

func TestSearchMatchesTagsAndDescriptionLiterally(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	doc := f.upload(t, alice, "Plain", "plain.pdf")
	desc := "discount 50%_off"
	tags := []string{"Tax"}
	_, err := f.docs.Update(ctx, alice, doc.ID, documents.Patch{Description: &desc, Tags: &tags})
	require.NoError(t, err)
	f.upload(t, alice, "Other 50 percent", "other.pdf")

	results, err := f.svc.Search(ctx, alice, "50%_")
	require.NoError(t, err)
	assert.Equal(t, []string{"Plain"}, titles(results))

	results, err = f.svc.Search(ctx, alice, "tax")
	require.NoError(t, err)
	assert.Equal(t, []string{"Plain"}, titles(results))
}

func TestSearchRequiresQuery(t *testing.T) {
	f := newFixture(t)
	_, err := f.svc.Search(context.Background(), alice, "   ")
	assert.ErrorIs(t, err, apperr.ErrValidation)
}

func TestSearchHandler(t *testing.T) {
	f := newFixture(t)
	f.upload(t, alice, "Invoice Q1", "a.pdf")

	gin.SetMode(gin.TestMode)
	router := gin.New()
	rg := router.Group("/api/v1")
	rg.Use(func(c *gin.Context) {
		middleware.SetPrincipal(c, alice)
		c.Next()
	})
	NewHandler(f.svc).RegisterRoutes(rg)

	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/api/v1/search?q=inv", nil))
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}
	var body struct {
		Success   bool                          `json:"success"`
		Count     int                           `json:"count"`
		Documents []documents.DocumentResponse `json:"documents"`
	}
	if err := json.Unmarshal(resp.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !body.Success || body.Count != 1 || len(body.Documents) != 1 || body.Documents[0].Title != "Invoice Q1" {
		t.Fatalf("unexpected body: %s", resp.Body.String())
	}

	resp = httptest.NewRecorder()
	router.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/api/v1/search?q=", nil))
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.Code)
	}
}

package service

import (
	"context"
	"strings"
	"testing"

	"talenta/internal/models"
	"talenta/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReferenceService_AddLink(t *testing.T) {
	e := newTestEnv(t, "")
	ctx := context.Background()
	me := e.profile(t, "maker")

	ref, err := e.referenceSvc.Add(ctx, AddReferenceInput{UserID: me.ID, Type: "link", Title: " Portfolio ", URL: "https://maker.example.com"})
	require.NoError(t, err)
	assert.Equal(t, "Portfolio", ref.Title)
	assert.Empty(t, ref.FilePath)

	for _, in := range []AddReferenceInput{
		{UserID: me.ID, Type: "link", Title: "x", URL: "ftp://maker.example.com"},
		{UserID: me.ID, Type: "link", Title: "x"},
		{UserID: me.ID, Type: "link", Title: "  ", URL: "https://maker.example.com"},
		{UserID: me.ID, Type: "link", Title: strings.Repeat("t", 201), URL: "https://maker.example.com"},
		{UserID: me.ID, Type: "video", Title: "x", URL: "https://maker.example.com"},
		{UserID: me.ID, Type: "document", Title: "x"},
	} {
		_, err := e.referenceSvc.Add(ctx, in)
		assertCode(t, err, models.CodeValidation)
	}
}

func TestReferenceService_DocumentLifecycle(t *testing.T) {
	e := newTestEnv(t, "")
	ctx := context.Background()
	me := e.profile(t, "maker")
	other := e.profile(t, "other")

	doc, err := e.referenceSvc.Add(ctx, AddReferenceInput{
		UserID: me.ID,
		Type:   "document",
		Title:  "CV",
		File:   &Upload{Filename: "cv.pdf", Content: []byte("%PDF-1.4 resume")},
	})
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(doc.FilePath, "references/"))
	assert.True(t, strings.HasSuffix(doc.FilePath, ".pdf"))
	assert.Equal(t, "cv.pdf", doc.FileName)
	assert.Equal(t, int64(15), doc.FileSize)
	assert.Equal(t, e.blobs.PublicURL(doc.FilePath), doc.URL)
	assert.Equal(t, "application/pdf", e.blobs.ContentType(doc.FilePath))

	link, err := e.referenceSvc.Add(ctx, AddReferenceInput{UserID: me.ID, Type: "link", Title: "Site", URL: "http://maker.example.com"})
	require.NoError(t, err)

	list, err := e.referenceSvc.List(ctx, me.ID)
	require.NoError(t, err)
	assert.Len(t, list, 2)

	// Someone else's id reads as missing and leaves the blob alone.
	err = e.referenceSvc.Delete(ctx, other.ID, doc.ID)
	assertCode(t, err, models.CodeNotFound)
	assert.True(t, e.blobs.Has(doc.FilePath))

	require.NoError(t, e.referenceSvc.Delete(ctx, me.ID, doc.ID))
	assert.False(t, e.blobs.Has(doc.FilePath))

	require.NoError(t, e.referenceSvc.Delete(ctx, me.ID, link.ID))
	assert.Len(t, e.blobs.Removed, 1, "links have no blob to remove")

	list, err = e.referenceSvc.List(ctx, me.ID)
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestReferenceService_DeleteWithStorageFailure(t *testing.T) {
	e := newTestEnv(t, "")
	ctx := context.Background()
	me := e.profile(t, "maker")

	doc, err := e.referenceSvc.Add(ctx, AddReferenceInput{
		UserID: me.ID,
		Type:   "document",
		Title:  "Notes",
		File:   &Upload{Filename: "notes.txt", Content: []byte("hello")},
	})
	require.NoError(t, err)

	e.blobs.RemoveErr = testutil.ErrStorageDown
	require.NoError(t, e.referenceSvc.Delete(ctx, me.ID, doc.ID))

	list, err := e.referenceSvc.List(ctx, me.ID)
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestReferenceService_DocumentRules(t *testing.T) {
	e := newTestEnv(t, "")
	me := e.profile(t, "maker")
	svc := NewReferenceService(e.references, e.blobs, MediaLimits{Document: 4})

	_, err := svc.Add(context.Background(), AddReferenceInput{
		UserID: me.ID, Type: "document", Title: "Big", File: &Upload{Filename: "a.txt", Content: []byte("12345")},
	})
	assertCode(t, err, models.CodeValidation)

	_, err = e.referenceSvc.Add(context.Background(), AddReferenceInput{
		UserID: me.ID, Type: "document", Title: "Exe", File: &Upload{Filename: "a.exe", Content: []byte("MZ")},
	})
	assertCode(t, err, models.CodeValidation)
	assert.Empty(t, e.blobs.Keys())
}

package content

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"testing/fstest"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"finitefield.org/cv-web/internal/i18n"
)

func perLanguageFS() fstest.MapFS {
	return fstest.MapFS{
		"personal.yaml":   {Data: []byte("name: Jane Doe\ntitle: Engineer\n")},
		"career_en.yaml":  {Data: []byte("career:\n  - id: acme\n    company: ACME\n    position: Engineer\n    start_date: \"2020-01\"\n")},
		"career_de.yaml":  {Data: []byte("career:\n  - id: acme\n    company: ACME\n    position: Ingenieurin\n    start_date: \"2020-01\"\n")},
		"ui_text_en.yaml": {Data: []byte("ui_text:\n  home: Home\n")},
		"skills_en.yaml":  {Data: []byte("skills: [unclosed\n")},
	}
}

type countingSource struct {
	inner Source
	calls atomic.Int64
	gate  chan struct{}
}

func (c *countingSource) Read(ctx context.Context, name string) ([]byte, error) {
	c.calls.Add(1)
	if c.gate != nil {
		<-c.gate
	}
	return c.inner.Read(ctx, name)
}

func TestStoreCachesByCompositeKey(t *testing.T) {
	src := &countingSource{inner: NewFSSource(perLanguageFS())}
	store := NewStore(src)
	ctx := context.Background()

	doc, err := store.Fetch(ctx, Career, i18n.English)
	require.NoError(t, err)
	assert.Equal(t, i18n.English, doc.Language)

	_, err = store.Fetch(ctx, Career, i18n.English)
	require.NoError(t, err)
	assert.EqualValues(t, 1, src.calls.Load(), "second fetch must hit the cache")

	de, err := store.Fetch(ctx, Career, i18n.German)
	require.NoError(t, err)
	items, err := DecodeCareer(de)
	require.NoError(t, err)
	assert.Equal(t, "Ingenieurin", items[0].Position)
	assert.EqualValues(t, 2, src.calls.Load())

	personal, err := store.Fetch(ctx, Personal, i18n.German)
	require.NoError(t, err)
	assert.Empty(t, personal.Language)
	_, err = store.Fetch(ctx, Personal, i18n.French)
	require.NoError(t, err)
	assert.EqualValues(t, 3, src.calls.Load(), "personal is shared across languages")

	store.ClearCache("career|en")
	_, err = store.Fetch(ctx, Career, i18n.English)
	require.NoError(t, err)
	assert.EqualValues(t, 4, src.calls.Load())
	_, err = store.Fetch(ctx, Career, i18n.German)
	require.NoError(t, err)
	assert.EqualValues(t, 4, src.calls.Load(), "other keys stay cached")

	store.ClearCache()
	assert.Zero(t, store.CachedKeys())
}

func TestStoreDoesNotCacheFailures(t *testing.T) {
	src := &countingSource{inner: NewFSSource(perLanguageFS())}
	store := NewStore(src)

	_, err := store.Fetch(context.Background(), Projects, i18n.English)
	var ferr *FetchError
	require.ErrorAs(t, err, &ferr)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Equal(t, "projects_en.yaml", ferr.Path)

	_, err = store.Fetch(context.Background(), Projects, i18n.English)
	require.Error(t, err)
	assert.EqualValues(t, 2, src.calls.Load())
}

func TestStoreReportsParseErrors(t *testing.T) {
	store := NewStore(NewFSSource(perLanguageFS()))
	_, err := store.Fetch(context.Background(), Skills, i18n.English)
	var perr *ParseError
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, Skills, perr.Name)
	assert.Equal(t, i18n.English, perr.Lang)
}

func TestStoreCoalescesConcurrentFetches(t *testing.T) {
	src := &countingSource{inner: NewFSSource(perLanguageFS()), gate: make(chan struct{})}
	store := NewStore(src)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := store.Fetch(context.Background(), Career, i18n.English)
			assert.NoError(t, err)
		}()
	}
	require.Eventually(t, func() bool { return src.calls.Load() == 1 }, time.Second, 5*time.Millisecond)
	close(src.gate)
	wg.Wait()
	assert.EqualValues(t, 1, src.calls.Load())
}

func TestFetchAllSettlesIndependently(t *testing.T) {
	store := NewStore(NewFSSource(perLanguageFS()))
	set := store.FetchAll(context.Background(), i18n.English)

	assert.NotNil(t, set.Get(Personal))
	assert.NotNil(t, set.Get(Career))
	assert.NotNil(t, set.Get(UIText))
	assert.Nil(t, set.Get(Education))
	assert.Nil(t, set.Get(Skills))
	assert.Nil(t, set.Get(Projects))
	assert.ErrorIs(t, set.Err(Education), ErrNotFound)
	assert.NoError(t, set.Err(Career))
	assert.Len(t, set.Docs, len(Documents))
}

func TestHTTPSource404IsFetchError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/cv/career_en.yaml":
			_, _ = w.Write([]byte("career:\n  - company: Remote Co\n"))
		case "/cv/skills_en.yaml":
			http.Error(w, "boom", http.StatusInternalServerError)
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	store := NewStore(NewHTTPSource(srv.URL+"/cv/", time.Second))
	ctx := context.Background()

	doc, err := store.Fetch(ctx, Career, i18n.English)
	require.NoError(t, err)
	items, err := DecodeCareer(doc)
	require.NoError(t, err)
	assert.Equal(t, "Remote Co", items[0].Company)

	_, err = store.Fetch(ctx, Education, i18n.English)
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = store.Fetch(ctx, Skills, i18n.English)
	var serr *StatusError
	require.ErrorAs(t, err, &serr)
	assert.Equal(t, http.StatusInternalServerError, serr.StatusCode)
}

func TestHTTPSourceRejectsOversizedDocuments(t *testing.T) {
	body := "career:\n  - company: Remote Co\n"
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(body))
	}))
	defer srv.Close()

	src := NewHTTPSource(srv.URL, time.Second)
	src.maxBytes = int64(len(body))
	data, err := src.Read(context.Background(), "career_en.yaml")
	require.NoError(t, err, "a document of exactly the limit is accepted")
	assert.Equal(t, body, string(data))

	src.maxBytes = int64(len(body)) - 1
	store := NewStore(src)
	_, err = store.Fetch(context.Background(), Career, i18n.English)
	var ferr *FetchError
	require.ErrorAs(t, err, &ferr)
	assert.ErrorIs(t, err, ErrTooLarge)
	assert.Zero(t, store.CachedKeys())
}

func TestFallbackSourceUsesLocalCopy(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	src := NewFallbackSource(NewHTTPSource(srv.URL, time.Second), NewFSSource(perLanguageFS()), nil)
	data, err := src.Read(context.Background(), "personal.yaml")
	require.NoError(t, err)
	assert.Contains(t, string(data), "Jane Doe")
}

func TestLanguageKeyedStrategy(t *testing.T) {
	fsys := fstest.MapFS{
		"career.yml": {Data: []byte(`
en:
  positions:
    - company: ACME
      title: Engineer
de:
  positions:
    - company: ACME
      title: Ingenieurin
`)},
		"ui_text.yml": {Data: []byte(`
home:
  en: Home
  de: Startseite
timeline_link_text:
  en: Timeline
`)},
	}
	src := &countingSource{inner: NewFSSource(fsys)}
	store := NewStore(src, WithStrategy(LanguageKeyed))
	ctx := context.Background()

	en, err := store.Fetch(ctx, Career, i18n.English)
	require.NoError(t, err)
	de, err := store.Fetch(ctx, Career, i18n.German)
	require.NoError(t, err)
	assert.EqualValues(t, 1, src.calls.Load(), "one shared file per document")

	enItems, err := DecodeCareer(en)
	require.NoError(t, err)
	deItems, err := DecodeCareer(de)
	require.NoError(t, err)
	assert.Equal(t, "Engineer", enItems[0].Position)
	assert.Equal(t, "Ingenieurin", deItems[0].Position)

	_, err = store.Fetch(ctx, Career, i18n.French)
	var perr *ParseError
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, i18n.French, perr.Lang)

	ui, err := store.Fetch(ctx, UIText, i18n.German)
	require.NoError(t, err)
	entries, err := DecodeUIText(ui)
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"home": "Startseite"}, entries)
}

func TestStrategyPaths(t *testing.T) {
	assert.Equal(t, "career_fr.yaml", PerLanguage.Path(Career, i18n.French))
	assert.Equal(t, "personal.yaml", PerLanguage.Path(Personal, i18n.French))
	assert.Equal(t, "career.yml", LanguageKeyed.Path(Career, i18n.French))
	assert.Equal(t, "career|fr", PerLanguage.CacheKey(Career, i18n.French))
	assert.Equal(t, "career", LanguageKeyed.CacheKey(Career, i18n.French))
	assert.False(t, PerLanguage.LanguageScoped(Personal))
	assert.True(t, PerLanguage.LanguageScoped(UIText))
	assert.True(t, LanguageKeyed.LanguageScoped(Personal))

	_, err := ParseStrategy("per-file")
	assert.Error(t, err)
	s, err := ParseStrategy(" Language_Keyed ")
	require.NoError(t, err)
	assert.Equal(t, LanguageKeyed, s)
}

func TestFSSourceRejectsTraversal(t *testing.T) {
	_, err := NewFSSource(perLanguageFS()).Read(context.Background(), "../etc/passwd")
	assert.True(t, errors.Is(err, ErrNotFound))
}

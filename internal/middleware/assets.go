package middleware

import (
	"crypto/sha256"
	"encoding/hex"
	"io"
	"io/fs"
	"net/http"
	"strings"
)

const assetCacheControl = "public, max-age=604800, stale-while-revalidate=86400"

// AssetsWithCache serves the stylesheet and script files in fsys below
// /assets. Each file gets a weak ETag derived from its content when the
// handler is built, so conditional requests are answered without reading the
// file again.
func AssetsWithCache(fsys fs.FS) http.Handler {
	etags := assetETags(fsys)
	files := http.StripPrefix("/assets", http.FileServerFS(fsys))
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h := w.Header()
		h.Set("Vary", "Accept-Encoding")
		h.Set("Cache-Control", assetCacheControl)
		et, ok := etags[strings.TrimPrefix(r.URL.Path, "/assets/")]
		if ok {
			h.Set("ETag", et)
			if etagMatches(r.Header.Get("If-None-Match"), et) {
				w.WriteHeader(http.StatusNotModified)
				return
			}
		}
		files.ServeHTTP(w, r)
	})
}

func assetETags(fsys fs.FS) map[string]string {
	out := map[string]string{}
	_ = fs.WalkDir(fsys, ".", func(name string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return nil
		}
		f, err := fsys.Open(name)
		if err != nil {
			return nil
		}
		defer f.Close()
		sum := sha256.New()
		if _, err := io.Copy(sum, f); err == nil {
			out[name] = `W/"` + hex.EncodeToString(sum.Sum(nil))[:32] + `"`
		}
		return nil
	})
	return out
}

// etagMatches applies the weak comparison of If-None-Match, which may list
// several tags or "*".
func etagMatches(header, etag string) bool {
	if header == "" {
		return false
	}
	bare := strings.TrimPrefix(etag, "W/")
	for _, candidate := range strings.Split(header, ",") {
		candidate = strings.TrimSpace(candidate)
		if candidate == "*" || strings.TrimPrefix(candidate, "W/") == bare {
			return true
		}
	}
	return false
}

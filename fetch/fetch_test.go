package fetch

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrjoshuak/getbook/types"
)

func TestFetch(t *testing.T) {
	var gotUA string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.UserAgent()
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write([]byte("<html>\r\n<body>héllo</body>\r\n</html>"))
	}))
	defer srv.Close()

	resp, err := New().Fetch(context.Background(), srv.URL+"/page")
	require.NoError(t, err)

	assert.Equal(t, srv.URL+"/page", resp.URL)
	assert.Equal(t, "<html>\n<body>héllo</body>\n</html>", resp.Body)
	assert.Equal(t, "utf-8", resp.Charset)
	assert.Equal(t, DefaultUserAgent, resp.UserAgent)
	assert.Equal(t, DefaultUserAgent, gotUA)
}

func TestFetchFollowsRedirects(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/old", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/new", http.StatusMovedPermanently)
	})
	mux.HandleFunc("/new", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("<p>moved</p>"))
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	resp, err := New().Fetch(context.Background(), srv.URL+"/old")
	require.NoError(t, err)
	assert.Equal(t, srv.URL+"/new", resp.URL)
}

func TestFetchErrors(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		code   int
	}{
		{"not found", http.StatusNotFound, "missing", http.StatusNotFound},
		{"no content", http.StatusNoContent, "", http.StatusNoContent},
		{"empty body", http.StatusOK, "  \n", http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			_, err := New().Fetch(context.Background(), srv.URL)
			require.Error(t, err)
			assert.ErrorIs(t, err, types.ErrFetch)

			var fe *types.FetchError
			require.True(t, errors.As(err, &fe))
			assert.Equal(t, tt.code, fe.StatusCode)
			assert.Equal(t, srv.URL, fe.URL)
		})
	}
}

func TestFetchBodyLimit(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(r.URL.Query().Get("body")))
	}))
	defer srv.Close()

	f := New(WithMaxBodySize(4))

	resp, err := f.Fetch(context.Background(), srv.URL+"/?body=abcd")
	require.NoError(t, err)
	assert.Equal(t, "abcd", resp.Body)

	_, err = f.Fetch(context.Background(), srv.URL+"/?body=abcde")
	require.Error(t, err)
	assert.ErrorIs(t, err, types.ErrDocumentLarge)
	assert.ErrorIs(t, err, types.ErrFetch)
}

func TestFetchUnreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	addr := srv.URL
	srv.Close()

	_, err := New(WithTimeout(time.Second)).Fetch(context.Background(), addr)
	assert.True(t, types.IsFetchError(err))
}

func TestUserAgent(t *testing.T) {
	f := New()
	assert.Equal(t, "curl", f.UserAgent("https://t.co/abc"))
	assert.Equal(t, DefaultUserAgent, f.UserAgent("https://example.com"))
	assert.Equal(t, "bot/1", New(WithUserAgent("bot/1")).UserAgent("https://example.com"))
}

func TestDecode(t *testing.T) {
	tests := []struct {
		name        string
		raw         []byte
		contentType string
		want        string
		charset     string
	}{
		{
			name:        "gbk from header alias",
			raw:         []byte{0xc4, 0xe3, 0xba, 0xc3},
			contentType: "text/html; charset=GB2312",
			want:        "你好",
			charset:     "gbk",
		},
		{
			name:    "meta charset",
			raw:     append([]byte(`<meta charset="gbk">`), 0xc4, 0xe3),
			want:    `<meta charset="gbk">你`,
			charset: "gbk",
		},
		{
			name:        "latin1 read as utf-8",
			raw:         []byte("caf\xc3\xa9"),
			contentType: "text/html; charset=ISO-8859-1",
			want:        "café",
			charset:     "utf-8",
		},
		{
			name:    "newlines",
			raw:     []byte("a\r\nb\rc"),
			want:    "a\nb\nc",
			charset: "windows-1252",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, name, err := Decode(tt.raw, tt.contentType)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.charset, name)
		})
	}
}

func TestRateLimit(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("ok"))
	}))
	defer srv.Close()

	f := New(WithRateLimit(1, 1))
	_, err := f.Fetch(context.Background(), srv.URL)
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	_, err = f.Fetch(ctx, srv.URL)
	assert.ErrorIs(t, err, types.ErrFetch)
}

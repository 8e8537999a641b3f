// Package remote fetches vlog files over HTTP(S).
package remote

import (
	"bytes"
	"context"
	"fmt"

	"github.com/crimson-sun/vlogscan/internal/model"
	"github.com/crimson-sun/vlogscan/internal/source"
)

func init() {
	ctor := func(target string, cfg source.Config) (source.Source, error) {
		var opts []Option
		if cfg.Token != "" {
			opts = append(opts, WithToken(cfg.Token))
		}
		if cfg.Timeout > 0 {
			opts = append(opts, WithTimeout(cfg.Timeout))
		}
		return New(target, NewClient(opts...)), nil
	}
	source.Register("http", ctor)
	source.Register("https", ctor)
}

// Source reads one remote document.
type Source struct {
	url    string
	client *Client
}

// New creates a Source fetching url with client.
func New(url string, client *Client) *Source {
	return &Source{url: url, client: client}
}

func (s *Source) Name() string { return s.url }

func (s *Source) Lines(ctx context.Context) ([]model.Line, error) {
	body, err := s.client.Fetch(ctx, s.url)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", s.url, err)
	}
	return source.ReadLines(ctx, s.url, bytes.NewReader(body))
}

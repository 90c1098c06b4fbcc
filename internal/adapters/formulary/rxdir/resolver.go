package rxdir

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"med-adherence/internal/platform/httpclient"
	"med-adherence/internal/ports/formulary"
)

// Resolver implementa formulary.Resolver contra el directorio rxdir.
type Resolver struct {
	client *Client
}

func NewResolver(client *Client) *Resolver {
	return &Resolver{client: client}
}

func (r *Resolver) Lookup(ctx context.Context, name string) (formulary.Entry, error) {
	if r == nil || r.client == nil || !r.client.IsConfigured() {
		return formulary.Entry{}, formulary.ErrNotConfigured
	}

	resp, err := r.client.GetDrug(ctx, name)
	if err != nil {
		var he *httpclient.HTTPError
		if errors.As(err, &he) && he.StatusCode == http.StatusNotFound {
			return formulary.Entry{}, formulary.ErrUnknownMedication
		}
		return formulary.Entry{}, err
	}

	entry := formulary.Entry{
		Code:   strings.TrimSpace(resp.Code),
		Name:   strings.TrimSpace(resp.Name),
		Active: resp.Active,
	}
	if entry.Name == "" {
		// Respuesta vacía del upstream: la tratamos como desconocido.
		return formulary.Entry{}, formulary.ErrUnknownMedication
	}
	return entry, nil
}

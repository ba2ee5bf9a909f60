package server

import (
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/meshy-studio/meshy/pkg/errors"
	"github.com/meshy-studio/meshy/pkg/httputil"
	"github.com/meshy-studio/meshy/pkg/params"
	"github.com/meshy-studio/meshy/pkg/pipeline"
	"github.com/meshy-studio/meshy/pkg/render"
	"github.com/meshy-studio/meshy/pkg/snippet"
)

func (s *Server) handleChart(w http.ResponseWriter, r *http.Request) {
	s.serveImage(w, r, pipeline.KindChart, "")
}

func (s *Server) handleMesh(w http.ResponseWriter, r *http.Request) {
	seed, err := meshSeed(r)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.serveImage(w, r, pipeline.KindMesh, seed)
}

// meshSeed returns the decoded {seed} segment. chi matches on RawPath when
// the path holds escapes such as %2F, leaving the parameter encoded.
func meshSeed(r *http.Request) (string, error) {
	seed := chi.URLParam(r, "seed")
	if r.URL.RawPath == "" {
		return seed, nil
	}
	decoded, err := url.PathUnescape(seed)
	if err != nil {
		return "", errors.Wrap(errors.ErrCodeInvalidSeed, err, "malformed seed %q", seed)
	}
	return decoded, nil
}

func (s *Server) handleOG(w http.ResponseWriter, r *http.Request) {
	s.serveImage(w, r, pipeline.KindOG, "")
}

// handleRandomMesh redirects to a fresh seed, keeping the query.
func (s *Server) handleRandomMesh(w http.ResponseWriter, r *http.Request) {
	target := "/api/mesh/" + uuid.NewString()
	if r.URL.RawQuery != "" {
		target += "?" + r.URL.RawQuery
	}
	http.Redirect(w, r, target, http.StatusFound)
}

func (s *Server) handleSnippet(w http.ResponseWriter, r *http.Request) {
	flavor, err := snippet.ParseFlavor(r.URL.Query().Get("flavor"))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	v, err := params.ParseQuery(r.URL.RawQuery)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	p, err := params.DecodeOG(v)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	out, err := snippet.Generate(flavor, p, s.publicURL)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	httputil.WriteText(w, http.StatusOK, out)
}

// serveImage renders fully before writing so failures never leave a
// partial image on the wire.
func (s *Server) serveImage(w http.ResponseWriter, r *http.Request, kind pipeline.Kind, seed string) {
	res, err := s.runner.Query(r.Context(), kind, seed, r.URL.RawQuery)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	httputil.WriteImage(w, render.ContentType, res.Data)
}

func (s *Server) fail(w http.ResponseWriter, r *http.Request, err error) {
	status := httputil.WriteError(w, err)
	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed", "path", r.URL.Path, "status", status, "err", err)
	} else {
		s.logger.Debug("request rejected", "path", r.URL.Path, "status", status, "err", err)
	}
}

package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"bgcapi/internal/core/jobmodel"
	"bgcapi/internal/modkit/httpkit"
	perr "bgcapi/internal/platform/errors"
)

// jobCreatedResponse is the 200 body returned right after a job is
// committed: the caller polls Next until the job reaches a terminal state.
type jobCreatedResponse struct {
	Status string `json:"status"`
	Next   string `json:"next"`
	ID     string `json:"id"`
}

// jobStatusResponse is the GET /api/job/:id body. Results carries whatever
// the job kind produced once Status is "done"; it is nil otherwise.
type jobStatusResponse struct {
	ID      string `json:"id"`
	Status  string `json:"status"`
	Results any    `json:"results,omitempty"`
	Error   string `json:"error,omitempty"`
}

// registerJobs mounts job submission (one route per kind, since each kind
// has a distinct input shape) and the single shared status-polling route.
func (d *deps) registerJobs(r httpkit.Router) {
	r.Post("/jobs/clusterblast", httpkit.JSON[jobmodel.BlastInput](d.submitClusterBlast))
	r.Post("/jobs/comparippson", httpkit.JSON[jobmodel.BlastInput](d.submitCompaRiPPson))
	r.Post("/jobs/ping", httpkit.JSON[pingInput](d.submitPing))
	r.Get("/job/{id}", httpkit.Call(d.jobStatus))
}

type pingInput struct {
	Greeting string `json:"greeting" validate:"required"`
}

func (d *deps) submitClusterBlast(r *http.Request, in jobmodel.BlastInput) (any, error) {
	return d.commitJob(r, jobmodel.JobType{Kind: jobmodel.KindClusterBlast, ClusterBlast: &jobmodel.ClusterBlastJob{Input: in}})
}

func (d *deps) submitCompaRiPPson(r *http.Request, in jobmodel.BlastInput) (any, error) {
	return d.commitJob(r, jobmodel.JobType{Kind: jobmodel.KindCompaRiPPson, CompaRiPPson: &jobmodel.CompaRiPPsonJob{Input: in}})
}

func (d *deps) submitPing(r *http.Request, in pingInput) (any, error) {
	return d.commitJob(r, jobmodel.JobType{Kind: jobmodel.KindPing, Ping: &jobmodel.PingJob{Greeting: in.Greeting}})
}

func (d *deps) commitJob(r *http.Request, t jobmodel.JobType) (any, error) {
	entry := jobmodel.New(t, time.Now().UTC())
	if err := jobmodel.Commit(r.Context(), d.jobs, entry); err != nil {
		return nil, err
	}
	return jobCreatedResponse{
		Status: string(entry.Status),
		Next:   "/api/job/" + entry.ID,
		ID:     entry.ID,
	}, nil
}

func (d *deps) jobStatus(r *http.Request) (any, error) {
	id := chi.URLParam(r, "id")
	entry, err := d.jobReader.FetchByID(r.Context(), id)
	if err != nil {
		return nil, err
	}
	if entry == nil {
		return nil, perr.NotFoundf("job %s not found", id)
	}

	resp := jobStatusResponse{ID: entry.ID, Status: string(entry.Status)}
	if entry.Status == jobmodel.StatusDone {
		resp.Results = jobResults(entry.Type)
	}
	return resp, nil
}

// jobResults extracts the one populated result field from a JobType union
// for display; Store implementations and the worker populate it in place.
func jobResults(t jobmodel.JobType) any {
	switch t.Kind {
	case jobmodel.KindPing:
		if t.Ping != nil {
			return t.Ping.Reply
		}
	case jobmodel.KindClusterBlast:
		if t.ClusterBlast != nil {
			return t.ClusterBlast.Results
		}
	case jobmodel.KindCompaRiPPson:
		if t.CompaRiPPson != nil {
			return t.CompaRiPPson.Results
		}
	case jobmodel.KindStoredQuery:
		if t.StoredQuery != nil {
			return t.StoredQuery.Filename
		}
	}
	return nil
}

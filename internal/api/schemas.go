package api

import (
	"time"

	"github.com/cutroom/cutroom-agent/internal/project"
	"github.com/cutroom/cutroom-agent/internal/render"
	"github.com/cutroom/cutroom-agent/internal/timeline"
)

type HealthResponse struct {
	Status   string `json:"status"`
	Version  string `json:"version"`
	UptimeS  int64  `json:"uptime_s"`
	DeviceID string `json:"device_id"`
}

type CreateProjectRequest struct {
	Name string `json:"name"`
}

type RenameProjectRequest struct {
	Name string `json:"name"`
}

type ProjectResponse struct {
	ID        string            `json:"id"`
	Name      string            `json:"name"`
	Timeline  timeline.Timeline `json:"timeline"`
	Assets    []timeline.Asset  `json:"assets"`
	CreatedAt string            `json:"created_at"`
	UpdatedAt string            `json:"updated_at"`
}

type ProjectSummaryResponse struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	CreatedAt string `json:"created_at"`
	UpdatedAt string `json:"updated_at"`
}

type ProjectsResponse struct {
	Projects []ProjectSummaryResponse `json:"projects"`
}

type UpdateTimelineRequest struct {
	Timeline timeline.Timeline `json:"timeline"`
	Assets   []timeline.Asset  `json:"assets"`
}

type ExportRequest struct {
	ProjectName string            `json:"project_name"`
	Timeline    timeline.Timeline `json:"timeline"`
	Assets      []timeline.Asset  `json:"assets"`
	OutputDir   string            `json:"output_dir,omitempty"`
}

type ExportResponse struct {
	Status     string `json:"status"`
	Format     string `json:"format"`
	OutputPath string `json:"output_path"`
}

type RenderRequest struct {
	FileName string            `json:"file_name"`
	Timeline timeline.Timeline `json:"timeline"`
	Assets   []timeline.Asset  `json:"assets"`
}

type RenderStartResponse struct {
	JobID string `json:"job_id"`
}

type RenderJobResponse struct {
	ID         string `json:"id"`
	State      string `json:"state"`
	Progress   int    `json:"progress"`
	OutputPath string `json:"output_path,omitempty"`
	Error      string `json:"error,omitempty"`
}

type RenderProgressResponse struct {
	Progress    int  `json:"progress"`
	IsRendering bool `json:"is_rendering"`
}

type AutocutRequest struct {
	Words   []timeline.Word  `json:"words"`
	AssetID string           `json:"asset_id"`
	Assets  []timeline.Asset `json:"assets"`
	TrackID string           `json:"track_id,omitempty"`
}

type AutocutResponse struct {
	Clips []timeline.Clip `json:"clips"`
}

type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

func ProjectToResponse(p *project.Project) ProjectResponse {
	return ProjectResponse{
		ID:        p.ID,
		Name:      p.Name,
		Timeline:  p.Timeline,
		Assets:    p.Assets,
		CreatedAt: p.CreatedAt.Format(time.RFC3339),
		UpdatedAt: p.UpdatedAt.Format(time.RFC3339),
	}
}

func SummaryToResponse(s *project.Summary) ProjectSummaryResponse {
	return ProjectSummaryResponse{
		ID:        s.ID,
		Name:      s.Name,
		CreatedAt: s.CreatedAt.Format(time.RFC3339),
		UpdatedAt: s.UpdatedAt.Format(time.RFC3339),
	}
}

func JobToResponse(s render.JobStatus) RenderJobResponse {
	return RenderJobResponse{
		ID:         s.ID,
		State:      string(s.State),
		Progress:   s.Progress,
		OutputPath: s.OutputPath,
		Error:      s.Err,
	}
}

package api

import (
	"time"

	"mp4-splitter/application/session"
	"mp4-splitter/domain/history"
	"mp4-splitter/domain/split"
	"mp4-splitter/domain/video"
)

type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

type HealthResponse struct {
	Status  string `json:"status"`
	Version string `json:"version"`
	UptimeS int64  `json:"uptime_s"`
}

type InfoResponse struct {
	Filename   string  `json:"filename"`
	Duration   string  `json:"duration"`
	DurationMs int64   `json:"duration_ms"`
	Width      int     `json:"width"`
	Height     int     `json:"height"`
	FPS        float64 `json:"fps"`
}

type IntervalResponse struct {
	Index      int    `json:"index"`
	Start      string `json:"start"`
	End        string `json:"end"`
	StartMs    int64  `json:"start_ms"`
	EndMs      *int64 `json:"end_ms"`
	Duration   string `json:"duration"`
	DurationMs int64  `json:"duration_ms"`
	Selected   bool   `json:"selected"`
}

type SessionResponse struct {
	Source          string             `json:"source"`
	OutputDirectory string             `json:"output_directory"`
	Info            *InfoResponse      `json:"info,omitempty"`
	Intervals       []IntervalResponse `json:"intervals"`
	CanExport       bool               `json:"can_export"`
}

type LoadVideoRequest struct {
	Path string `json:"path"`
}

type OutputRequest struct {
	Directory string `json:"directory"`
}

// AddPointRequest accepts either HH:MM:SS.mmm text or milliseconds
type AddPointRequest struct {
	Time string `json:"time,omitempty"`
	Ms   *int64 `json:"ms,omitempty"`
}

type EditBoundaryRequest struct {
	Boundary string `json:"boundary"`
	Time     string `json:"time"`
}

type SelectedRequest struct {
	Selected bool `json:"selected"`
}

type SegmentResponse struct {
	Index      int    `json:"index"`
	Start      string `json:"start"`
	End        string `json:"end"`
	OutputName string `json:"output_name"`
	OutputPath string `json:"output_path"`
}

type ExportResponse struct {
	Status   string            `json:"status"`
	Error    string            `json:"error,omitempty"`
	Events   []video.Event     `json:"events"`
	Segments []SegmentResponse `json:"segments,omitempty"`
}

type RunResponse struct {
	ID         string            `json:"id"`
	Source     string            `json:"source"`
	OutputDir  string            `json:"output_dir"`
	Status     string            `json:"status"`
	Error      string            `json:"error,omitempty"`
	StartedAt  string            `json:"started_at"`
	FinishedAt string            `json:"finished_at"`
	Segments   []SegmentResponse `json:"segments"`
}

type HistoryResponse struct {
	Runs []RunResponse `json:"runs"`
}

func InfoToResponse(info *video.Info) *InfoResponse {
	if info == nil {
		return nil
	}
	return &InfoResponse{
		Filename:   info.Filename,
		Duration:   split.FormatTime(info.DurationMs),
		DurationMs: info.DurationMs,
		Width:      info.Width,
		Height:     info.Height,
		FPS:        info.FPS,
	}
}

func IntervalToResponse(index int, iv split.Interval) IntervalResponse {
	return IntervalResponse{
		Index:      index,
		Start:      split.FormatTime(iv.StartMs),
		End:        split.FormatOptional(iv.EndMs),
		StartMs:    iv.StartMs,
		EndMs:      iv.EndMs,
		Duration:   split.FormatTime(iv.Duration()),
		DurationMs: iv.Duration(),
		Selected:   iv.Selected,
	}
}

func StateToResponse(st session.State) SessionResponse {
	resp := SessionResponse{
		Source:          st.Source,
		OutputDirectory: st.OutputDir,
		Info:            InfoToResponse(st.Info),
		Intervals:       make([]IntervalResponse, len(st.Intervals)),
		CanExport:       st.CanExport,
	}
	for i, iv := range st.Intervals {
		resp.Intervals[i] = IntervalToResponse(i, iv)
	}
	return resp
}

func SegmentToResponse(seg video.Segment) SegmentResponse {
	return SegmentResponse{
		Index:      seg.Index,
		Start:      split.FormatTime(seg.StartMs),
		End:        split.FormatTime(seg.EndMs),
		OutputName: seg.OutputName,
		OutputPath: seg.OutputPath,
	}
}

func RunToResponse(run history.Run) RunResponse {
	resp := RunResponse{
		ID:         run.ID,
		Source:     run.Source,
		OutputDir:  run.OutputDir,
		Status:     string(run.Status),
		Error:      run.Error,
		StartedAt:  run.StartedAt.Format(time.RFC3339),
		FinishedAt: run.FinishedAt.Format(time.RFC3339),
		Segments:   make([]SegmentResponse, len(run.Segments)),
	}
	for i, seg := range run.Segments {
		resp.Segments[i] = SegmentToResponse(seg)
	}
	return resp
}

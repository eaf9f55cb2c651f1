package report

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/wmshell/shell-packager/internal/config"
	domain "github.com/wmshell/shell-packager/internal/domain/build"
)

// Repository defines persistence operations for the build report.
type Repository interface {
	Load(ctx context.Context) (*domain.Report, error)
	Save(ctx context.Context, report *domain.Report) error
}

// FileRepository persists the build report to a JSON file on disk.
// JSON is produced and consumed via protobuf Struct values (protojson) so the
// report stays readable by any JSON tooling.
type FileRepository struct {
	// path is the filesystem location of the JSON report file.
	path string
	// mu protects concurrent access to the report file.
	mu sync.Mutex
}

// ErrNotFound is returned when the report file does not exist yet.
var ErrNotFound = errors.New("report not found")

var errMalformedReport = errors.New("malformed report")

// NewFileRepository creates a repository that reads/writes JSON at the provided path.
func NewFileRepository(path string) *FileRepository {
	return &FileRepository{
		path: filepath.Clean(path),
	}
}

// Path returns the report file location.
func (r *FileRepository) Path() string {
	return r.path
}

// Load reads the report from disk.
func (r *FileRepository) Load(_ context.Context) (*domain.Report, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	contents, err := os.ReadFile(r.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, ErrNotFound
		}

		return nil, fmt.Errorf("read report file: %w", err)
	}

	var protoReport structpb.Struct
	if err = protojson.Unmarshal(contents, &protoReport); err != nil {
		return nil, fmt.Errorf("decode report file: %w", err)
	}

	report, err := fromProto(&protoReport)
	if err != nil {
		return nil, fmt.Errorf("decode report file: %w", err)
	}

	return report, nil
}

// Save writes the report to disk using JSON representation.
func (r *FileRepository) Save(_ context.Context, report *domain.Report) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	protoReport, err := toProto(report)
	if err != nil {
		return fmt.Errorf("encode report: %w", err)
	}

	marshalOptions := protojson.MarshalOptions{
		Multiline:       true,
		Indent:          "  ",
		EmitUnpopulated: true,
	}

	data, err := marshalOptions.Marshal(protoReport)
	if err != nil {
		return fmt.Errorf("encode report: %w", err)
	}

	if err = os.MkdirAll(filepath.Dir(r.path), config.DefaultDirPermissions); err != nil {
		return fmt.Errorf("create report directory: %w", err)
	}

	if err = os.WriteFile(r.path, data, config.DefaultFilePermissions); err != nil {
		return fmt.Errorf("write report file: %w", err)
	}

	return nil
}

// toProto converts the domain Report into a protobuf Struct.
func toProto(report *domain.Report) (*structpb.Struct, error) {
	stages := make([]any, 0, len(report.Stages))
	for _, s := range report.Stages {
		stages = append(stages, map[string]any{
			"name":     s.Name,
			"result":   s.Result,
			"duration": s.Duration.String(),
			"error":    s.Error,
		})
	}

	artifacts := make([]any, 0, len(report.Artifacts))
	for _, a := range report.Artifacts {
		artifacts = append(artifacts, map[string]any{
			"name":     a.Name,
			"target":   a.Target,
			"checksum": a.Checksum,
		})
	}

	var actor any
	if report.Actor != nil {
		actor = map[string]any{
			"hostname": report.Actor.Hostname,
			"username": report.Actor.Username,
		}
	}

	return structpb.NewStruct(map[string]any{
		"build_id":    report.BuildID,
		"version":     report.Version,
		"prerelease":  report.Prerelease,
		"platform":    report.Platform,
		"arch":        report.Arch,
		"commit":      report.Commit,
		"actor":       actor,
		"state":       report.State,
		"stages":      stages,
		"artifacts":   artifacts,
		"started_at":  formatTime(report.StartedAt),
		"finished_at": formatTime(report.FinishedAt),
	})
}

// fromProto converts a protobuf Struct into the domain Report.
func fromProto(protoReport *structpb.Struct) (*domain.Report, error) {
	fields := protoReport.GetFields()

	report := &domain.Report{
		BuildID:    fields["build_id"].GetStringValue(),
		Version:    fields["version"].GetStringValue(),
		Prerelease: fields["prerelease"].GetBoolValue(),
		Platform:   fields["platform"].GetStringValue(),
		Arch:       fields["arch"].GetStringValue(),
		Commit:     fields["commit"].GetStringValue(),
		State:      fields["state"].GetStringValue(),
	}

	if actor := fields["actor"].GetStructValue(); actor != nil {
		report.Actor = &domain.Actor{
			Hostname: actor.GetFields()["hostname"].GetStringValue(),
			Username: actor.GetFields()["username"].GetStringValue(),
		}
	}

	for _, v := range fields["stages"].GetListValue().GetValues() {
		stage := v.GetStructValue().GetFields()

		duration, err := time.ParseDuration(stage["duration"].GetStringValue())
		if err != nil {
			return nil, fmt.Errorf("%w: stage duration: %w", errMalformedReport, err)
		}

		report.Stages = append(report.Stages, domain.StageRecord{
			Name:     stage["name"].GetStringValue(),
			Result:   stage["result"].GetStringValue(),
			Duration: duration,
			Error:    stage["error"].GetStringValue(),
		})
	}

	for _, v := range fields["artifacts"].GetListValue().GetValues() {
		artifact := v.GetStructValue().GetFields()
		report.Artifacts = append(report.Artifacts, domain.ArtifactRecord{
			Name:     artifact["name"].GetStringValue(),
			Target:   artifact["target"].GetStringValue(),
			Checksum: artifact["checksum"].GetStringValue(),
		})
	}

	var err error

	if report.StartedAt, err = parseTime(fields["started_at"].GetStringValue()); err != nil {
		return nil, err
	}

	if report.FinishedAt, err = parseTime(fields["finished_at"].GetStringValue()); err != nil {
		return nil, err
	}

	return report, nil
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}

	return t.UTC().Format(time.RFC3339Nano)
}

func parseTime(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}

	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: timestamp: %w", errMalformedReport, err)
	}

	return t, nil
}

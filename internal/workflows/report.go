package workflows

import (
	"time"

	"go.temporal.io/sdk/temporal"
	"go.temporal.io/sdk/workflow"

	"github.com/unaigarro/sombra/internal/core/domain"
)

// SolarReportInput is the input for the solar report workflow.
type SolarReportInput struct {
	RefCat       string
	BufferMeters float64
}

// SolarReportWorkflow sweeps a building parcel with a grid of observation
// points, runs a shadow analysis at each, and publishes the aggregated
// obstruction report. Individual point failures are skipped; the workflow
// fails only when the parcel cannot be sampled at all.
func SolarReportWorkflow(ctx workflow.Context, input SolarReportInput) (domain.SolarReport, error) {
	logger := workflow.GetLogger(ctx)
	logger.Info("Starting solar report workflow", "refcat", input.RefCat)

	actOpts := workflow.ActivityOptions{
		StartToCloseTimeout: 30 * time.Second,
		RetryPolicy: &temporal.RetryPolicy{
			MaximumAttempts: 3,
		},
	}
	ctx = workflow.WithActivityOptions(ctx, actOpts)

	// Step 1: Sample observation points over the footprint
	var points []domain.Point3D
	if err := workflow.ExecuteActivity(ctx, "SamplePoints", input.RefCat).Get(ctx, &points); err != nil {
		return domain.SolarReport{}, err
	}

	// Step 2: Analyze each point
	var (
		analyzed  int
		sumFrac   float64
		maxElev   float64
	)
	for _, p := range points {
		var summary PointSummary
		if err := workflow.ExecuteActivity(ctx, "AnalyzePoint", p, input.BufferMeters).Get(ctx, &summary); err != nil {
			logger.Warn("point analysis failed, skipping", "x", p.X, "y", p.Y, "error", err)
			continue
		}
		analyzed++
		sumFrac += summary.Obstructed
		if summary.MaxElevation > maxElev {
			maxElev = summary.MaxElevation
		}
	}
	if analyzed == 0 {
		return domain.SolarReport{}, temporal.NewApplicationError("no observation point could be analyzed", "NoPoints")
	}

	report := domain.SolarReport{
		ID:             workflow.GetInfo(ctx).WorkflowExecution.ID,
		RefCat:         input.RefCat,
		Points:         analyzed,
		MeanObstructed: sumFrac / float64(analyzed),
		MaxElevation:   maxElev,
		GeneratedAt:    workflow.Now(ctx).UTC(),
	}

	// Step 3: Publish the report; a publish failure does not void the result
	if err := workflow.ExecuteActivity(ctx, "PublishReport", report).Get(ctx, nil); err != nil {
		logger.Warn("report publish failed", "error", err)
	}

	logger.Info("Solar report complete", "refcat", input.RefCat, "points", analyzed, "meanObstructed", report.MeanObstructed)
	return report, nil
}

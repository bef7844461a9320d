package server

import (
	"context"

	"github.com/google/uuid"
	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/joseph-ayodele/cibil-aggregator/internal/entity"
)

// Client calls AggregatorService.
type Client struct {
	cc grpc.ClientConnInterface
}

func NewClient(cc grpc.ClientConnInterface) *Client {
	return &Client{cc: cc}
}

func (c *Client) invoke(ctx context.Context, method string, in map[string]any, opts ...grpc.CallOption) (*structpb.Struct, error) {
	req, err := structpb.NewStruct(in)
	if err != nil {
		return nil, err
	}
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, "/"+ServiceName+"/"+method, req, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

// Aggregate sends pages and returns the aggregated report.
func (c *Client) Aggregate(ctx context.Context, pages []entity.PageInput, opts ...grpc.CallOption) (*entity.AggregatedReport, error) {
	out, err := c.invoke(ctx, "Aggregate", map[string]any{"pages": pagesValue(pages)}, opts...)
	if err != nil {
		return nil, err
	}
	var report entity.AggregatedReport
	if err := fromStruct(out, &report); err != nil {
		return nil, err
	}
	return &report, nil
}

// Store sends pages, persists the result and returns its ID with the report.
func (c *Client) Store(ctx context.Context, source string, pages []entity.PageInput, opts ...grpc.CallOption) (uuid.UUID, *entity.AggregatedReport, error) {
	out, err := c.invoke(ctx, "Aggregate", map[string]any{
		"pages":  pagesValue(pages),
		"store":  true,
		"source": source,
	}, opts...)
	if err != nil {
		return uuid.Nil, nil, err
	}
	var resp struct {
		ReportID uuid.UUID                `json:"report_id"`
		Report   *entity.AggregatedReport `json:"report"`
	}
	if err := fromStruct(out, &resp); err != nil {
		return uuid.Nil, nil, err
	}
	return resp.ReportID, resp.Report, nil
}

func (c *Client) GetReport(ctx context.Context, id uuid.UUID, opts ...grpc.CallOption) (*entity.StoredReport, error) {
	out, err := c.invoke(ctx, "GetReport", map[string]any{"id": id.String()}, opts...)
	if err != nil {
		return nil, err
	}
	var rep entity.StoredReport
	if err := fromStruct(out, &rep); err != nil {
		return nil, err
	}
	return &rep, nil
}

func (c *Client) ListReports(ctx context.Context, limit int, opts ...grpc.CallOption) ([]*entity.StoredReport, error) {
	out, err := c.invoke(ctx, "ListReports", map[string]any{"limit": limit}, opts...)
	if err != nil {
		return nil, err
	}
	var resp struct {
		Reports []*entity.StoredReport `json:"reports"`
	}
	if err := fromStruct(out, &resp); err != nil {
		return nil, err
	}
	return resp.Reports, nil
}

// Submit queues a file on the server and returns the job ID.
func (c *Client) Submit(ctx context.Context, path string, opts ...grpc.CallOption) (uuid.UUID, error) {
	out, err := c.invoke(ctx, "Submit", map[string]any{"path": path}, opts...)
	if err != nil {
		return uuid.Nil, err
	}
	return uuid.Parse(out.GetFields()["job_id"].GetStringValue())
}

func pagesValue(pages []entity.PageInput) []any {
	out := make([]any, len(pages))
	for i, p := range pages {
		m := map[string]any{"page_number": p.PageNumber, "text": p.Text}
		if p.ExtractionMethod != "" {
			m["extraction_method"] = p.ExtractionMethod
		}
		out[i] = m
	}
	return out
}

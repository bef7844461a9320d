package server

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"google.golang.org/grpc"
	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/types/known/structpb"

	jobs "github.com/joseph-ayodele/cibil-aggregator/internal/async"
	"github.com/joseph-ayodele/cibil-aggregator/internal/common"
	"github.com/joseph-ayodele/cibil-aggregator/internal/core"
	"github.com/joseph-ayodele/cibil-aggregator/internal/repository"
)

// ServiceName is the fully qualified gRPC service name.
const ServiceName = "cibil.v1.AggregatorService"

// AggregatorService serves aggregation over gRPC. Messages are google.protobuf.Struct
// values carrying the JSON shapes of the page records and reports.
type AggregatorService struct {
	proc   *core.Processor
	repo   repository.ReportRepository // nil when no store is configured
	queue  jobs.Queue                  // nil when submissions are disabled
	logger *slog.Logger
}

func NewAggregatorService(proc *core.Processor, repo repository.ReportRepository, queue jobs.Queue, logger *slog.Logger) *AggregatorService {
	if logger == nil {
		logger = slog.Default()
	}
	return &AggregatorService{proc: proc, repo: repo, queue: queue, logger: logger}
}

// Aggregate runs the pipeline over {"pages": [...]}. With "full": true the whole processing
// result is returned; with "store": true it is also persisted and "report_id" is set.
func (s *AggregatorService) Aggregate(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	fields := req.GetFields()
	if _, ok := fields["pages"]; !ok {
		return nil, common.InvalidArgumentError("pages is required")
	}
	raw, err := protojson.Marshal(req)
	if err != nil {
		return nil, common.InternalError("encode request")
	}
	pages, err := core.DecodePages(raw)
	if err != nil {
		s.logger.Warn("aggregate.request.invalid", "error", err)
		return nil, common.ToStatus(err)
	}

	full := fields["full"].GetBoolValue()
	store := fields["store"].GetBoolValue()
	if !full && !store {
		report, err := s.proc.Aggregate(ctx, pages)
		if err != nil {
			return nil, common.ToStatus(err)
		}
		return toStruct(report)
	}

	res, err := s.proc.ProcessPages(ctx, "", pages)
	if err != nil {
		return nil, common.ToStatus(err)
	}
	out := map[string]any{}
	if full {
		out["result"] = res
	} else {
		out["report"] = res.AggregatedData
	}
	if store {
		if s.repo == nil {
			return nil, common.ToStatus(fmt.Errorf("%w: no report store configured", common.ErrUnsupported))
		}
		source := strings.TrimSpace(fields["source"].GetStringValue())
		if source == "" {
			source = "grpc"
		}
		id, err := s.repo.Save(ctx, source, res)
		if err != nil {
			s.logger.Error("aggregate.store.failed", "error", err)
			return nil, common.ToStatus(err)
		}
		out["report_id"] = id.String()
	}
	return toStruct(out)
}

// GetReport returns a stored report by {"id": "..."}.
func (s *AggregatorService) GetReport(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	if s.repo == nil {
		return nil, common.ToStatus(fmt.Errorf("%w: no report store configured", common.ErrUnsupported))
	}
	id, err := uuid.Parse(strings.TrimSpace(req.GetFields()["id"].GetStringValue()))
	if err != nil {
		return nil, common.InvalidArgumentError("id must be a UUID")
	}
	rep, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, common.ToStatus(err)
	}
	return toStruct(rep)
}

// ListReports returns {"reports": [...]} newest first, bounded by an optional "limit".
func (s *AggregatorService) ListReports(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	if s.repo == nil {
		return nil, common.ToStatus(fmt.Errorf("%w: no report store configured", common.ErrUnsupported))
	}
	limit := int(req.GetFields()["limit"].GetNumberValue())
	if limit < 0 {
		return nil, common.InvalidArgumentErrorf("limit must be >= 0, got %d", limit)
	}
	reps, err := s.repo.List(ctx, limit)
	if err != nil {
		return nil, common.ToStatus(err)
	}
	return toStruct(map[string]any{"reports": reps})
}

// Submit queues {"path": "..."} for background processing and returns {"job_id": "..."}.
func (s *AggregatorService) Submit(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	if s.queue == nil {
		return nil, common.ToStatus(fmt.Errorf("%w: background processing is disabled", common.ErrUnsupported))
	}
	path := strings.TrimSpace(req.GetFields()["path"].GetStringValue())
	if path == "" {
		return nil, common.InvalidArgumentError("path is required")
	}
	job := jobs.NewJob(path)
	if err := s.queue.Enqueue(ctx, job); err != nil {
		return nil, common.InternalError(err.Error())
	}
	return toStruct(map[string]any{"job_id": job.ID.String()})
}

func toStruct(v any) (*structpb.Struct, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, common.InternalError("encode response")
	}
	out := &structpb.Struct{}
	if err := protojson.Unmarshal(b, out); err != nil {
		return nil, common.InternalError("encode response")
	}
	return out, nil
}

type aggregatorServer interface {
	Aggregate(context.Context, *structpb.Struct) (*structpb.Struct, error)
	GetReport(context.Context, *structpb.Struct) (*structpb.Struct, error)
	ListReports(context.Context, *structpb.Struct) (*structpb.Struct, error)
	Submit(context.Context, *structpb.Struct) (*structpb.Struct, error)
}

func unaryHandler(method string, call func(aggregatorServer, context.Context, *structpb.Struct) (*structpb.Struct, error)) grpc.MethodDesc {
	return grpc.MethodDesc{
		MethodName: method,
		Handler: func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
			in := new(structpb.Struct)
			if err := dec(in); err != nil {
				return nil, err
			}
			if interceptor == nil {
				return call(srv.(aggregatorServer), ctx, in)
			}
			info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/" + ServiceName + "/" + method}
			return interceptor(ctx, in, info, func(ctx context.Context, req any) (any, error) {
				return call(srv.(aggregatorServer), ctx, req.(*structpb.Struct))
			})
		},
	}
}

// ServiceDesc describes AggregatorService for grpc.Server.RegisterService.
var ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*aggregatorServer)(nil),
	Methods: []grpc.MethodDesc{
		unaryHandler("Aggregate", aggregatorServer.Aggregate),
		unaryHandler("GetReport", aggregatorServer.GetReport),
		unaryHandler("ListReports", aggregatorServer.ListReports),
		unaryHandler("Submit", aggregatorServer.Submit),
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "cibil/v1/aggregator.proto",
}

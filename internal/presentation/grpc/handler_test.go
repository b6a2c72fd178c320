package grpc

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"path/filepath"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	grpclib "google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"

	"github.com/bibbank/underwriting/internal/application/dto"
	"github.com/bibbank/underwriting/internal/application/usecase"
	"github.com/bibbank/underwriting/internal/domain/model"
	"github.com/bibbank/underwriting/internal/domain/service"
	"github.com/bibbank/underwriting/internal/infrastructure/messaging"
	"github.com/bibbank/underwriting/internal/infrastructure/persistence/memory"
	"github.com/bibbank/underwriting/pkg/tlsutil"
)

// --- Helpers ---

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func buildTestHandler() *BlanketLoanHandler {
	logger := discardLogger()
	repo := memory.NewAllocationRepo()
	amortization := service.NewAmortizationEngine()
	dscr := service.NewDSCRCalculator()
	scorer := service.NewRiskScorer()
	engine := service.NewBlanketAllocationEngine(amortization, dscr, scorer)
	defaults := usecase.ConstraintDefaults{
		MinDSCR:              decimal.NewFromInt(1),
		MaxIterations:        model.DefaultMaxIterations,
		ConvergenceTolerance: model.DefaultConvergenceTolerance,
	}

	return NewBlanketLoanHandler(
		usecase.NewAllocateBlanketLoanUseCase(repo, messaging.NewLogEventPublisher("underwriting-events", logger),
			nil, engine, nil, defaults, logger),
		usecase.NewGetAllocationUseCase(repo),
		usecase.NewCalculatePropertyMetricsUseCase(amortization, dscr, scorer, defaults.MinDSCR),
		logger,
	)
}

func feasibleRequest() *AllocateRequest {
	return &AllocateRequest{
		Loan: dto.LoanTermsRequest{
			Principal:  decimal.NewFromInt(1000000),
			AnnualRate: decimal.RequireFromString("0.075"),
			TermMonths: 360,
		},
		Properties: []dto.PropertyRequest{
			{PropertyID: "A", MonthlyGrossRent: decimal.NewFromInt(8000), AppraisedValue: decimal.NewFromInt(700000)},
			{PropertyID: "B", MonthlyGrossRent: decimal.NewFromInt(1500), AppraisedValue: decimal.NewFromInt(300000)},
		},
	}
}

func requireGRPCCode(t *testing.T, err error, code codes.Code) {
	t.Helper()
	require.Error(t, err)
	st, ok := status.FromError(err)
	require.True(t, ok, "expected gRPC status error, got %v", err)
	assert.Equal(t, code, st.Code())
}

// --- Tests ---

func TestBlanketLoanHandler_Allocate(t *testing.T) {
	t.Run("nil request returns InvalidArgument", func(t *testing.T) {
		_, err := buildTestHandler().Allocate(context.Background(), nil)
		requireGRPCCode(t, err, codes.InvalidArgument)
	})

	t.Run("feasible allocation is returned and retrievable", func(t *testing.T) {
		h := buildTestHandler()
		ctx := context.Background()

		resp, err := h.Allocate(ctx, feasibleRequest())
		require.NoError(t, err)
		assert.True(t, resp.Feasible)
		assert.Equal(t, 2, resp.IterationsUsed)
		assert.Equal(t, "785472.86", resp.Allocations[0].AllocatedPrincipal.StringFixed(2))

		got, err := h.GetAllocation(ctx, &GetAllocationRequest{AllocationID: resp.ID})
		require.NoError(t, err)
		assert.Equal(t, resp.ID, got.ID)
	})

	t.Run("invalid input returns InvalidArgument", func(t *testing.T) {
		req := feasibleRequest()
		req.Properties = nil

		_, err := buildTestHandler().Allocate(context.Background(), req)
		requireGRPCCode(t, err, codes.InvalidArgument)
	})

	t.Run("zero term returns InvalidArgument", func(t *testing.T) {
		req := feasibleRequest()
		req.Loan.TermMonths = 0

		_, err := buildTestHandler().Allocate(context.Background(), req)
		requireGRPCCode(t, err, codes.InvalidArgument)
	})
}

func TestBlanketLoanHandler_GetAllocation(t *testing.T) {
	t.Run("unknown ID returns NotFound", func(t *testing.T) {
		_, err := buildTestHandler().GetAllocation(context.Background(), &GetAllocationRequest{AllocationID: "missing"})
		requireGRPCCode(t, err, codes.NotFound)
	})

	t.Run("empty ID returns InvalidArgument", func(t *testing.T) {
		_, err := buildTestHandler().GetAllocation(context.Background(), &GetAllocationRequest{})
		requireGRPCCode(t, err, codes.InvalidArgument)
	})
}

func TestBlanketLoanHandler_CalculatePropertyMetrics(t *testing.T) {
	resp, err := buildTestHandler().CalculatePropertyMetrics(context.Background(), &PropertyMetricsRequest{
		Loan: dto.LoanTermsRequest{
			Principal:  decimal.NewFromInt(300000),
			AnnualRate: decimal.RequireFromString("0.075"),
			TermMonths: 360,
		},
		Property: dto.PropertyRequest{
			PropertyID:       "B",
			MonthlyGrossRent: decimal.NewFromInt(1500),
			AppraisedValue:   decimal.NewFromInt(400000),
		},
	})
	require.NoError(t, err)
	assert.Equal(t, "2097.64", resp.MonthlyDebtService.StringFixed(2))
	assert.Equal(t, "0.7151", resp.DSCR)
	assert.False(t, resp.MeetsMinDSCR)
}

func TestBlanketLoanHandler_ToStatus(t *testing.T) {
	h := buildTestHandler()
	ctx := context.Background()

	tests := []struct {
		name string
		err  error
		want codes.Code
	}{
		{"invalid input", fmt.Errorf("allocate: %w", model.ErrInvalidInput), codes.InvalidArgument},
		{"invalid term", fmt.Errorf("monthly payment: %w", model.ErrInvalidTerm), codes.InvalidArgument},
		{"canceled", fmt.Errorf("save: %w", context.Canceled), codes.Canceled},
		{"deadline", context.DeadlineExceeded, codes.DeadlineExceeded},
		{"other", errors.New("connection reset"), codes.Internal},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			requireGRPCCode(t, h.toStatus(ctx, "Test", tt.err), tt.want)
		})
	}

	st, _ := status.FromError(h.toStatus(ctx, "Test", errors.New("password=secret")))
	assert.NotContains(t, st.Message(), "secret")
}

func TestServer_JSONCodecRoundTrip(t *testing.T) {
	lis := bufconn.Listen(1 << 20)
	srv := NewServer(buildTestHandler(), discardLogger(), ServerOptions{ServiceName: "underwriting-service"})
	go func() { _ = srv.ServeListener(lis) }()
	t.Cleanup(srv.GracefulStop)

	conn, err := grpclib.NewClient("passthrough:///bufnet",
		grpclib.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
			return lis.DialContext(ctx)
		}),
		grpclib.WithTransportCredentials(insecure.NewCredentials()),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	ctx := context.Background()

	var resp AllocationResponse
	err = conn.Invoke(ctx, "/"+serviceName+"/Allocate", feasibleRequest(), &resp,
		grpclib.CallContentSubtype("json"))
	require.NoError(t, err)
	assert.True(t, resp.Feasible)
	assert.Equal(t, "FEASIBLE", resp.Outcome)

	var missing AllocationResponse
	err = conn.Invoke(ctx, "/"+serviceName+"/GetAllocation",
		&GetAllocationRequest{AllocationID: "missing"}, &missing, grpclib.CallContentSubtype("json"))
	requireGRPCCode(t, err, codes.NotFound)

	health, err := healthpb.NewHealthClient(conn).Check(ctx, &healthpb.HealthCheckRequest{Service: serviceName})
	require.NoError(t, err)
	assert.Equal(t, healthpb.HealthCheckResponse_SERVING, health.Status)
}

func TestServer_TLS(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, tlsutil.DevCertificates(dir, "localhost"))
	serverCreds, err := tlsutil.ServerCredentials(filepath.Join(dir, "server.pem"), filepath.Join(dir, "server-key.pem"))
	require.NoError(t, err)
	clientCreds, err := tlsutil.ClientCredentials(filepath.Join(dir, "ca.pem"))
	require.NoError(t, err)

	lis := bufconn.Listen(1 << 20)
	srv := NewServer(buildTestHandler(), discardLogger(), ServerOptions{
		ServiceName: "underwriting-service",
		Credentials: serverCreds,
	})
	go func() { _ = srv.ServeListener(lis) }()
	t.Cleanup(srv.GracefulStop)

	conn, err := grpclib.NewClient("passthrough:///localhost",
		grpclib.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
			return lis.DialContext(ctx)
		}),
		grpclib.WithTransportCredentials(clientCreds),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })

	health, err := healthpb.NewHealthClient(conn).Check(context.Background(),
		&healthpb.HealthCheckRequest{Service: "underwriting-service"})
	require.NoError(t, err)
	assert.Equal(t, healthpb.HealthCheckResponse_SERVING, health.Status)
}

// Package grpc provides the gRPC client for the identity service.
package grpc

import (
	"context"
	"crypto/tls"
	"log/slog"
	"time"

	"github.com/samber/oops"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	otelcodes "go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/connectivity"
	"google.golang.org/grpc/credentials"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/keepalive"
	"google.golang.org/grpc/status"

	"github.com/quillpress/quill/internal/auth"
)

var tracer = otel.Tracer("quill/grpc")

// Client implements auth.Gateway over a gRPC connection to the identity service.
type Client struct {
	conn    *grpc.ClientConn
	timeout time.Duration
	logger  *slog.Logger
}

var _ auth.Gateway = (*Client)(nil)

// ClientConfig holds configuration for the gRPC client.
type ClientConfig struct {
	// Address is the identity service address (e.g., "localhost:5000")
	Address string

	// TLSConfig secures the connection. If nil, insecure connection is used.
	TLSConfig *tls.Config

	// RequestTimeout bounds every call. Zero means no deadline beyond the caller's.
	RequestTimeout time.Duration

	// KeepaliveTime is how often to ping the server (default: 10s)
	KeepaliveTime time.Duration

	// KeepaliveTimeout is how long to wait for ping response (default: 5s)
	KeepaliveTimeout time.Duration

	// DialOptions are appended to the client's own options.
	DialOptions []grpc.DialOption

	// Logger receives call failures. Defaults to discarding.
	Logger *slog.Logger
}

// NewClient creates a client for the identity service. The connection is
// established lazily on the first call.
func NewClient(cfg ClientConfig) (*Client, error) {
	if cfg.Address == "" {
		return nil, oops.Code("GATEWAY_CONFIG_INVALID").Errorf("address is required")
	}

	if cfg.KeepaliveTime == 0 {
		cfg.KeepaliveTime = 10 * time.Second
	}
	if cfg.KeepaliveTimeout == 0 {
		cfg.KeepaliveTimeout = 5 * time.Second
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.New(slog.DiscardHandler)
	}

	opts := []grpc.DialOption{
		grpc.WithKeepaliveParams(keepalive.ClientParameters{
			Time:                cfg.KeepaliveTime,
			Timeout:             cfg.KeepaliveTimeout,
			PermitWithoutStream: true,
		}),
		grpc.WithDefaultCallOptions(grpc.CallContentSubtype(codecName)),
	}

	if cfg.TLSConfig != nil {
		opts = append(opts, grpc.WithTransportCredentials(credentials.NewTLS(cfg.TLSConfig)))
	} else {
		opts = append(opts, grpc.WithTransportCredentials(insecure.NewCredentials()))
	}
	opts = append(opts, cfg.DialOptions...)

	conn, err := grpc.NewClient(cfg.Address, opts...)
	if err != nil {
		return nil, oops.Code(auth.CodeTransport).With("address", cfg.Address).Wrapf(err, "failed to create identity client")
	}

	return &Client{
		conn:    conn,
		timeout: cfg.RequestTimeout,
		logger:  cfg.Logger,
	}, nil
}

// Close closes the underlying gRPC connection.
func (c *Client) Close() error {
	if c.conn != nil {
		if err := c.conn.Close(); err != nil {
			return oops.Wrapf(err, "failed to close connection")
		}
	}
	return nil
}

// Ready reports whether the connection is usable or still being established.
func (c *Client) Ready() bool {
	state := c.conn.GetState()
	return state != connectivity.TransientFailure && state != connectivity.Shutdown
}

// Login exchanges credentials for a session token.
func (c *Client) Login(ctx context.Context, creds auth.Credentials) (auth.SessionToken, error) {
	var resp AuthResponse
	req := &LoginRequest{Login: creds.Login, Password: creds.Password}
	if err := c.invoke(ctx, MethodLogin, req, &resp); err != nil {
		return "", err
	}
	return auth.SessionToken(resp.Token), nil
}

// Signup creates an account and returns its session token.
func (c *Client) Signup(ctx context.Context, input auth.SignupInput) (auth.SessionToken, error) {
	var resp AuthResponse
	req := &SignupRequest{Username: input.Username, Email: input.Email, Password: input.Password}
	if err := c.invoke(ctx, MethodSignup, req, &resp); err != nil {
		return "", err
	}
	return auth.SessionToken(resp.Token), nil
}

// Authenticate resolves a token to its profile via AuthUser.
func (c *Client) Authenticate(ctx context.Context, token auth.SessionToken) (auth.UserProfile, error) {
	var resp AuthUserResponse
	if err := c.invoke(ctx, MethodAuthUser, &AuthUserRequest{Token: string(token)}, &resp); err != nil {
		return auth.UserProfile{}, err
	}
	return auth.UserProfile{ID: resp.ID, Email: resp.Email, Username: resp.Username}, nil
}

// UsernameAvailable returns true if no account uses username.
func (c *Client) UsernameAvailable(ctx context.Context, username string) (bool, error) {
	var resp UsedResponse
	if err := c.invoke(ctx, MethodUsernameUsed, &UsernameUsedRequest{Username: username}, &resp); err != nil {
		return false, err
	}
	return !resp.Used, nil
}

// EmailAvailable returns true if no account uses email.
func (c *Client) EmailAvailable(ctx context.Context, email string) (bool, error) {
	var resp UsedResponse
	if err := c.invoke(ctx, MethodEmailUsed, &EmailUsedRequest{Email: email}, &resp); err != nil {
		return false, err
	}
	return !resp.Used, nil
}

func (c *Client) invoke(ctx context.Context, method string, req, resp any) (err error) {
	ctx, span := tracer.Start(ctx, "identity."+method,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(attribute.String("rpc.service", ServiceName), attribute.String("rpc.method", method)),
	)
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(otelcodes.Error, err.Error())
		}
		span.End()
	}()

	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	if callErr := c.conn.Invoke(ctx, fullMethod(method), req, resp); callErr != nil {
		err = classify(method, callErr)
		c.logger.DebugContext(ctx, "identity call failed",
			"event", "rpc_failed",
			"method", method,
			"code", auth.CodeOf(err),
		)
		return err
	}
	return nil
}

// classify maps a gRPC status to the gateway error taxonomy. The status
// message is kept verbatim as the user-visible text.
func classify(method string, err error) error {
	st, _ := status.FromError(err)
	kind := auth.CodeTransport

	switch method {
	case MethodLogin:
		if st.Code() == codes.Unauthenticated {
			kind = auth.CodeInvalidCredentials
		}
	case MethodAuthUser:
		if st.Code() == codes.Unauthenticated || st.Code() == codes.InvalidArgument {
			kind = auth.CodeInvalidToken
		}
	case MethodSignup:
		switch st.Code() {
		case codes.InvalidArgument, codes.AlreadyExists, codes.FailedPrecondition:
			kind = auth.CodeValidationRejected
		}
	}

	return oops.Code(kind).
		With("method", method).
		With("grpc_code", st.Code().String()).
		Errorf("%s", st.Message())
}

package auth

import (
	"context"
	"fmt"
	"regexp"

	"github.com/rs/zerolog"
)

var reEmail = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

// Service orchestrates signup, login and bearer verification on top of the
// credential store, the password hasher and the token signer. All state is
// read-only after construction, so it is safe for concurrent use.
type Service struct {
	users  UserStore
	signer *JWTSigner
	argon  ArgonParams
	log    zerolog.Logger
}

func NewService(users UserStore, signer *JWTSigner, log zerolog.Logger) *Service {
	return &Service{
		users:  users,
		signer: signer,
		argon:  DefaultArgon,
		log:    log,
	}
}

// Signup registers a self-service account. The public path only ever creates
// student accounts: a requested role other than "student" is rejected, and
// elevated roles go through the admin-only CreateUser path. New accounts
// start unapproved.
func (s *Service) Signup(ctx context.Context, req SignupRequest) (*User, error) {
	if req.Role != "" && req.Role != RoleStudent {
		return nil, fmt.Errorf("%w: self-registration is limited to the student role", ErrValidation)
	}
	req.Role = RoleStudent
	return s.createUser(ctx, req, false)
}

// CreateUser registers an account on behalf of an admin. Any valid role is
// accepted; admin accounts are approved immediately, everyone else starts
// unapproved.
func (s *Service) CreateUser(ctx context.Context, req SignupRequest) (*User, error) {
	if req.Role == "" {
		req.Role = RoleStudent
	}
	if !ValidRole(req.Role) {
		return nil, fmt.Errorf("%w: unknown role %q", ErrValidation, req.Role)
	}
	return s.createUser(ctx, req, req.Role == RoleAdmin)
}

func (s *Service) createUser(ctx context.Context, req SignupRequest, approved bool) (*User, error) {
	if req.Name == "" || req.Email == "" || req.Password == "" {
		return nil, fmt.Errorf("%w: name, email, and password are required", ErrValidation)
	}
	email := NormalizeEmail(req.Email)
	if !reEmail.MatchString(email) {
		return nil, fmt.Errorf("%w: valid email required", ErrValidation)
	}

	// Pre-check for a friendly error; the unique index is the real guard.
	if _, err := s.users.FindByEmail(ctx, email); err == nil {
		return nil, ErrEmailTaken
	}

	hash, err := HashPassword(s.argon, req.Password)
	if err != nil {
		s.log.Err(err).Msg("password hashing failed")
		return nil, err
	}

	u := &User{
		Name:     req.Name,
		Email:    email,
		PassHash: hash,
		Role:     req.Role,
		Approved: approved,
	}
	if err := s.users.Add(ctx, u); err != nil {
		return nil, err
	}
	s.log.Info().Str("email", u.Email).Str("role", string(u.Role)).Msg("account created")
	return u, nil
}

// Login verifies credentials and issues a bearer token. Unknown email and
// wrong password collapse into the same ErrBadCredentials so callers cannot
// enumerate accounts. Approval is not a login precondition; unapproved
// accounts authenticate and act within their role.
func (s *Service) Login(ctx context.Context, req LoginRequest) (*LoginResult, error) {
	if req.Email == "" || req.Password == "" {
		return nil, fmt.Errorf("%w: email and password are required", ErrValidation)
	}

	u, err := s.users.FindByEmail(ctx, req.Email)
	if err != nil {
		return nil, ErrBadCredentials
	}
	ok, err := VerifyPassword(req.Password, u.PassHash)
	if err != nil {
		s.log.Err(err).Str("email", u.Email).Msg("stored password hash is malformed")
		return nil, ErrBadCredentials
	}
	if !ok {
		return nil, ErrBadCredentials
	}

	token, exp, err := s.signer.IssueToken(u.ID.Hex(), u.Email, u.Role)
	if err != nil {
		s.log.Err(err).Msg("token issue failed")
		return nil, err
	}
	return &LoginResult{Token: token, ExpiresAt: exp, User: u}, nil
}

// VerifyBearer is the verification contract used by the access gate.
func (s *Service) VerifyBearer(token string) (*Claims, error) {
	return s.signer.ParseAndValidate(token)
}

// ParseAndValidate makes Service satisfy TokenParser so the gate middleware
// can be wired directly to the service.
func (s *Service) ParseAndValidate(token string) (*Claims, error) {
	return s.VerifyBearer(token)
}

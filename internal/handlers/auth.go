package handlers

import (
	"database/sql"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"os"
	"regexp"
	"time"

	"wastewatch-backend/internal/middleware"
	"wastewatch-backend/internal/models"
	"wastewatch-backend/pkg/utils"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"golang.org/x/crypto/bcrypt"
)

const minPasswordLength = 8

var emailRegex = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// pqUniqueViolation is the Postgres error code for a UNIQUE constraint hit.
const pqUniqueViolation = "23505"

// isUniqueViolation reports whether err is a Postgres unique-constraint
// violation. The exists-check in Register is advisory only; two concurrent
// registrations for the same email are settled by the UNIQUE index, and the
// loser must still see a conflict, not an internal error.
func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == pqUniqueViolation
}

type RegisterRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
	Role     string `json:"role"` // "Citizen", "Municipal" or "Admin"
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type AuthResponse struct {
	Success bool                 `json:"success"`
	Token   string               `json:"token,omitempty"`
	User    *models.UserResponse `json:"user,omitempty"`
}

// signToken creates a JWT carrying the user's id, email and role.
func signToken(user *models.User) (string, error) {
	jwtSecret := os.Getenv("APP_JWT_SECRET")
	if jwtSecret == "" {
		log.Println("❌ JWT secret not configured")
		return "", jwt.ErrTokenUnverifiable
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id": user.ID,
		"email":   user.Email,
		"role":    user.Role,
		"iat":     time.Now().Unix(),
		"exp":     time.Now().Add(7 * 24 * time.Hour).Unix(),
	})

	return token.SignedString([]byte(jwtSecret))
}

// Register creates a new account. All validation happens before any write.
func Register(db *sqlx.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req RegisterRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			utils.RespondError(w, http.StatusBadRequest, utils.KindInvalidInput, "Invalid request body")
			return
		}

		if req.Email == "" || req.Password == "" || req.Name == "" || req.Role == "" {
			utils.RespondError(w, http.StatusBadRequest, utils.KindInvalidInput, "Email, password, name, and role are required")
			return
		}
		if !models.ValidRole(req.Role) {
			utils.RespondError(w, http.StatusBadRequest, utils.KindInvalidInput, "Role must be 'Citizen', 'Municipal', or 'Admin'")
			return
		}
		if !emailRegex.MatchString(req.Email) {
			utils.RespondError(w, http.StatusBadRequest, utils.KindInvalidInput, "Invalid email format")
			return
		}
		if len(req.Password) < minPasswordLength {
			utils.RespondError(w, http.StatusBadRequest, utils.KindInvalidInput, "Password must be at least 8 characters long")
			return
		}

		// Check if user already exists
		var existingID string
		err := db.Get(&existingID, "SELECT id FROM users WHERE email = $1", req.Email)
		if err == nil {
			log.Printf("❌ User already exists: %s", req.Email)
			utils.RespondError(w, http.StatusConflict, utils.KindConflict, "User with this email already exists")
			return
		}
		if err != sql.ErrNoRows {
			log.Printf("❌ Error checking existing user: %v", err)
			utils.RespondError(w, http.StatusInternalServerError, utils.KindInternal, "Failed to create user")
			return
		}

		hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
		if err != nil {
			log.Printf("❌ Failed to hash password: %v", err)
			utils.RespondError(w, http.StatusInternalServerError, utils.KindInternal, "Failed to create user")
			return
		}

		now := time.Now().Unix()
		user := models.User{
			ID:        uuid.New().String(),
			Email:     req.Email,
			Password:  string(hashedPassword),
			Name:      req.Name,
			Role:      req.Role,
			Badges:    models.BadgeList{},
			Level:     1,
			CreatedAt: now,
			UpdatedAt: now,
		}

		_, err = db.Exec(`INSERT INTO users (id, email, password, name, role, created_at, updated_at)
		                  VALUES ($1, $2, $3, $4, $5, $6, $7)`,
			user.ID, user.Email, user.Password, user.Name, user.Role, now, now)
		if err != nil {
			if isUniqueViolation(err) {
				log.Printf("❌ User already exists: %s", req.Email)
				utils.RespondError(w, http.StatusConflict, utils.KindConflict, "User with this email already exists")
				return
			}
			log.Printf("❌ Error creating user: %v", err)
			utils.RespondError(w, http.StatusInternalServerError, utils.KindInternal, "Failed to create user")
			return
		}

		tokenString, err := signToken(&user)
		if err != nil {
			log.Printf("❌ Failed to create token: %v", err)
			utils.RespondError(w, http.StatusInternalServerError, utils.KindInternal, "Failed to create token")
			return
		}

		userResponse := user.ToUserResponse()
		log.Printf("✅ Registered new %s: %s", user.Role, user.Email)

		utils.RespondJSON(w, http.StatusCreated, AuthResponse{
			Success: true,
			Token:   tokenString,
			User:    &userResponse,
		})
	}
}

// Login verifies credentials and issues a JWT.
func Login(db *sqlx.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req LoginRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			utils.RespondError(w, http.StatusBadRequest, utils.KindInvalidInput, "Invalid request body")
			return
		}

		log.Printf("🔐 Login attempt for: %s", req.Email)

		if req.Email == "" || req.Password == "" {
			utils.RespondError(w, http.StatusBadRequest, utils.KindInvalidInput, "Email and password are required")
			return
		}

		var user models.User
		if err := db.Get(&user, "SELECT * FROM users WHERE email = $1", req.Email); err != nil {
			log.Printf("❌ User not found: %s", req.Email)
			utils.RespondError(w, http.StatusUnauthorized, utils.KindUnauthenticated, "Invalid email or password")
			return
		}

		if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
			log.Printf("❌ Invalid password for: %s", req.Email)
			utils.RespondError(w, http.StatusUnauthorized, utils.KindUnauthenticated, "Invalid email or password")
			return
		}

		tokenString, err := signToken(&user)
		if err != nil {
			log.Printf("❌ Failed to create token: %v", err)
			utils.RespondError(w, http.StatusInternalServerError, utils.KindInternal, "Failed to create token")
			return
		}

		userResponse := user.ToUserResponse()
		log.Printf("✅ Login successful: %s (%s)", user.Email, user.Role)

		utils.RespondJSON(w, http.StatusOK, AuthResponse{
			Success: true,
			Token:   tokenString,
			User:    &userResponse,
		})
	}
}

// GetAuthStatus echoes the authenticated user's current record, so clients
// can verify a stored token is still good.
func GetAuthStatus(db *sqlx.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userClaims, ok := middleware.GetUserFromContext(r)
		if !ok {
			utils.RespondError(w, http.StatusUnauthorized, utils.KindUnauthenticated, "Authentication required")
			return
		}

		var user models.User
		if err := db.Get(&user, "SELECT * FROM users WHERE id = $1", userClaims.UserID); err != nil {
			utils.RespondError(w, http.StatusNotFound, utils.KindNotFound, "User not found")
			return
		}

		userResponse := user.ToUserResponse()
		utils.RespondJSON(w, http.StatusOK, map[string]interface{}{
			"success": true,
			"user":    userResponse,
		})
	}
}

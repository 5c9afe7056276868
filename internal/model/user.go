package model

import "time"

// Role 會話角色
type Role string

const (
	RoleUser     Role = "user"
	RoleOperator Role = "operator"
	RoleAdmin    Role = "admin"
)

// User 客戶
type User struct {
	ID             int       `json:"id" db:"id"`
	Name           string    `json:"NEV" db:"name"`
	Login          string    `json:"LOGIN" db:"login"`
	Email          string    `json:"EMAIL" db:"email"`
	PasswordHash   string    `json:"-" db:"password_hash"`
	Phone          string    `json:"TELEFON" db:"phone"`
	Address        string    `json:"CIM" db:"address"`
	SettlementID   *int      `json:"ID_TELEPULES" db:"settlement_id"`
	CompanyName    string    `json:"CEGNEV" db:"company_name"`
	TaxNumber      string    `json:"ADOSZAM" db:"tax_number"`
	BillingAddress string    `json:"CIM_SZML" db:"billing_address"`
	IsAdmin        bool      `json:"FUNKCIO" db:"is_admin"`
	CreatedAt      time.Time `json:"created_at" db:"created_at"`

	Settlement *Settlement `json:"settlement,omitempty" db:"-"`
}

// Operator 員工 / 管理員
type Operator struct {
	ID           int    `json:"ID_OPERATOR" db:"id"`
	Login        string `json:"LOGIN" db:"login"`
	Name         string `json:"NEV" db:"name"`
	Email        string `json:"EMAIL" db:"email"`
	PasswordHash string `json:"-" db:"password_hash"`
	IsAdmin      bool   `json:"ADMIN" db:"is_admin"`
}

// Role 回傳操作員的會話角色
func (o *Operator) Role() Role {
	if o.IsAdmin {
		return RoleAdmin
	}
	return RoleOperator
}

// RegisterRequest 註冊第一步
type RegisterRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6"`
}

// VerifyRequest 註冊第二步：驗證碼 + 個人資料
type VerifyRequest struct {
	Code         string `json:"code" binding:"required"`
	Name         string `json:"nev" binding:"required"`
	Phone        string `json:"telefon" binding:"required"`
	SettlementID int    `json:"telepules" binding:"required"`
	Address      string `json:"cim" binding:"required"`
	Login        string `json:"login" binding:"required"`
}

// LoginRequest 登入請求
type LoginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// LoginResult 登入結果
type LoginResult struct {
	UserID   int    `json:"userId"`
	Email    string `json:"email"`
	Role     Role   `json:"role"`
	Operator bool   `json:"-"`
}

// UpdateProfileRequest 更新個人資料
type UpdateProfileRequest struct {
	Login          string `json:"login"`
	Phone          string `json:"telefon"`
	Address        string `json:"cim"`
	CompanyName    string `json:"cegnev"`
	TaxNumber      string `json:"adoszam"`
	BillingAddress string `json:"cim_szml"`
}

// UserSummary 後台用戶列表
type UserSummary struct {
	ID      int    `json:"ID_USER"`
	Name    string `json:"NEV"`
	Email   string `json:"EMAIL"`
	Phone   string `json:"TELEFON"`
	IsAdmin bool   `json:"FUNKCIO"`
}

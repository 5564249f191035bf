package model

import "time"

// Creator represents a storefront creator account as stored in the
// `creators` table. Each field corresponds to a column in the database.
// The json tags are omitted here because these structs are primarily used
// internally by the repository layer; handlers define separate response
// types with appropriate JSON tags.
//
// Fields:
//  ID           – primary key identifier of the creator.
//  Email        – unique email address.
//  Username     – unique public handle used in profile routes.
//  PasswordHash – bcrypt hashed password.
//  IsActive     – whether the account is active.
//  CreatedAt    – timestamp of creation.
//  UpdatedAt    – timestamp of last update.
type Creator struct {
    ID           uint64    // creators.id
    Email        string    // creators.email
    Username     string    // creators.username
    PasswordHash string    // creators.password_hash
    IsActive     bool      // creators.is_active
    CreatedAt    time.Time // creators.created_at
    UpdatedAt    time.Time // creators.updated_at
}

// CreatorProfile is the display identity of a content owner, resolved
// best-effort from the verification authority after access is granted. It
// only enriches attribution; a missing profile never affects access.
type CreatorProfile struct {
    Username    string `json:"username"`
    DisplayName string `json:"display_name"`
    AvatarURL   string `json:"avatar_url,omitempty"`
}

package handlers

// 管理接口的请求与响应，与 apidocs/openapi.yaml 保持一致

type PaginationParams struct {
	Page  *uint `query:"page"`
	Limit *uint `query:"limit"`
}

type AuthLoginRequest struct {
	Username *string `json:"username"`
	Password *string `json:"password"`
}

type LoginToken struct {
	Token   *string `json:"token,omitempty"`
	Expires *int64  `json:"expires,omitempty"`
}

type UserListParams struct {
	PaginationParams
	Blocked       *bool   `query:"blocked"`
	Host          *string `query:"host"`
	Confirmations *bool   `query:"confirmations"`
}

type UserInfoWithID struct {
	Id                *uint   `json:"id,omitempty"`
	Username          *string `json:"username,omitempty"`
	Email             *string `json:"email,omitempty"`
	Confirmed         *int64  `json:"confirmed,omitempty"`
	Blocked           *bool   `json:"blocked,omitempty"`
	IsAdmin           *bool   `json:"is_admin,omitempty"`
	LastActivity      *int64  `json:"last_activity,omitempty"`
	DefaultLanguage   *string `json:"default_language,omitempty"`
	ConfirmationCount *int64  `json:"confirmation_count,omitempty"`
	Created           *int64  `json:"created,omitempty"`
}

type UserInfoUpdate struct {
	Blocked *bool `json:"blocked"`
	IsAdmin *bool `json:"is_admin"`
}

type UserListResponse struct {
	Limit   *int              `json:"limit,omitempty"`
	PageMax *int64            `json:"pageMax,omitempty"`
	List    *[]UserInfoWithID `json:"list,omitempty"`
}

type TranslationInfo struct {
	Language string `json:"language"`
	Title    string `json:"title"`
	Slug     string `json:"slug"`
	Text     string `json:"text"`
}

type ContentInfoInput struct {
	Published    *bool              `json:"published"`
	Sticky       *bool              `json:"sticky"` // 只用于博客文章
	Translations *[]TranslationInfo `json:"translations"`
}

type ContentInfoWithID struct {
	Id           *uint              `json:"id,omitempty"`
	Published    *bool              `json:"published,omitempty"`
	Sticky       *bool              `json:"sticky,omitempty"`
	AuthorId     *uint              `json:"author_id,omitempty"`
	Translations *[]TranslationInfo `json:"translations,omitempty"`
	Created      *int64             `json:"created,omitempty"`
	Updated      *int64             `json:"updated,omitempty"`
}

type ContentListResponse struct {
	Limit   *int                 `json:"limit,omitempty"`
	PageMax *int64               `json:"pageMax,omitempty"`
	List    *[]ContentInfoWithID `json:"list,omitempty"`
}

type MenuItemInput struct {
	Order  *int               `json:"order"`
	Target *string            `json:"target"`
	Titles *map[string]string `json:"titles"`
}

type MenuItemWithID struct {
	Id     *uint              `json:"id,omitempty"`
	Order  *int               `json:"order,omitempty"`
	Target *string            `json:"target,omitempty"`
	Titles *map[string]string `json:"titles,omitempty"`
}

type CertCreateRequest struct {
	Hostname    *string `json:"hostname"`
	Certificate *string `json:"certificate"`
	Enabled     *bool   `json:"enabled"`
}

type CertUpdateRequest struct {
	Enabled *bool `json:"enabled"`
}

type CertInfoWithID struct {
	Id         *uint     `json:"id,omitempty"`
	Hostname   *string   `json:"hostname,omitempty"`
	ValidFrom  *int64    `json:"valid_from,omitempty"`
	ValidUntil *int64    `json:"valid_until,omitempty"`
	Serial     *string   `json:"serial,omitempty"`
	KeySize    *int      `json:"key_size,omitempty"`
	DNSNames   *[]string `json:"dns_names,omitempty"`
	Enabled    *bool     `json:"enabled,omitempty"`
	SHA1       *string   `json:"sha1,omitempty"`
	SHA256     *string   `json:"sha256,omitempty"`
	SHA512     *string   `json:"sha512,omitempty"`
	PEM        *string   `json:"pem,omitempty"`
}

type CertListResponse struct {
	Limit   *int              `json:"limit,omitempty"`
	PageMax *int64            `json:"pageMax,omitempty"`
	List    *[]CertInfoWithID `json:"list,omitempty"`
}

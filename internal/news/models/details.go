package models

// NewsDetails is the article read model: the article plus the author and
// tenant names the listing shows alongside it.
type NewsDetails struct {
	*News
	AuthorName string `json:"author_name"`
	TenantName string `json:"tenant_name"`
}

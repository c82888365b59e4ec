package models

// Category represents a topical tag applied to accounts.
type Category struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// AccountCategory links an account to a category.
type AccountCategory struct {
	ID         int64  `json:"id"`
	AccountID  string `json:"account_id"`
	CategoryID int64  `json:"category_id"`
}

// Key returns the composite uniqueness key of the association.
func (ac AccountCategory) Key() AssociationKey {
	return AssociationKey{AccountID: ac.AccountID, CategoryID: ac.CategoryID}
}

// AssociationKey identifies an account/category pair.
type AssociationKey struct {
	AccountID  string
	CategoryID int64
}

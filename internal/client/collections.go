package client

import (
	"slices"
	"sort"

	"github.com/simp-lee/backoffice/internal/domain"
	"github.com/simp-lee/backoffice/internal/listquery"
)

// Collection describes one list endpoint and the row type it returns.
type Collection[T any] struct {
	// Name is the collection key of the list response, e.g. "users".
	Name string
	// Path is the endpoint below /api/v1, e.g. "/users".
	Path    string
	Title   string
	Columns []listquery.Column
}

// Records is a schemaless row, keyed by JSON field name.
type Records = map[string]any

// Untyped returns the same collection decoding rows as Records.
func (c Collection[T]) Untyped() Collection[Records] {
	return Collection[Records]{Name: c.Name, Path: c.Path, Title: c.Title, Columns: c.Columns}
}

var (
	Users = Collection[domain.User]{Name: "users", Path: "/users", Title: "Users", Columns: []listquery.Column{
		{ID: "id", Title: "ID", Sortable: true},
		{ID: "name", Title: "Name", Sortable: true, Filterable: true},
		{ID: "email", Title: "Email", Sortable: true, Filterable: true},
		{ID: "phone", Title: "Phone"},
		{ID: "status", Title: "Status", Sortable: true, Filterable: true},
		{ID: "created_at", Title: "Created", Sortable: true},
	}}
	Admins = Collection[domain.Admin]{Name: "admins", Path: "/admins", Title: "Admins", Columns: []listquery.Column{
		{ID: "id", Title: "ID", Sortable: true},
		{ID: "name", Title: "Name", Sortable: true, Filterable: true},
		{ID: "email", Title: "Email", Sortable: true, Filterable: true},
		{ID: "role_id", Title: "Role", Filterable: true},
		{ID: "active", Title: "Active"},
	}}
	Roles = Collection[domain.Role]{Name: "roles", Path: "/roles", Title: "Roles", Columns: []listquery.Column{
		{ID: "id", Title: "ID", Sortable: true},
		{ID: "name", Title: "Name", Sortable: true, Filterable: true},
		{ID: "description", Title: "Description"},
		{ID: "permissions", Title: "Permissions"},
	}}
	Vendors = Collection[domain.Vendor]{Name: "vendors", Path: "/vendors", Title: "Vendors", Columns: []listquery.Column{
		{ID: "id", Title: "ID", Sortable: true},
		{ID: "name", Title: "Name", Sortable: true, Filterable: true},
		{ID: "contact_email", Title: "Contact", Filterable: true},
		{ID: "status", Title: "Status", Sortable: true, Filterable: true},
		{ID: "city_id", Title: "City", Filterable: true},
		{ID: "created_at", Title: "Created", Sortable: true},
	}}
	Articles = Collection[domain.Article]{Name: "articles", Path: "/articles", Title: "Articles", Columns: []listquery.Column{
		{ID: "id", Title: "ID", Sortable: true},
		{ID: "title", Title: "Title", Sortable: true, Filterable: true},
		{ID: "slug", Title: "Slug", Filterable: true},
		{ID: "status", Title: "Status", Sortable: true, Filterable: true},
		{ID: "author_id", Title: "Author", Filterable: true},
		{ID: "updated_at", Title: "Updated", Sortable: true},
	}}
	Reviews = Collection[domain.Review]{Name: "reviews", Path: "/reviews", Title: "Reviews", Columns: []listquery.Column{
		{ID: "id", Title: "ID", Sortable: true},
		{ID: "vendor_id", Title: "Vendor", Filterable: true},
		{ID: "user_id", Title: "User", Filterable: true},
		{ID: "rating", Title: "Rating", Sortable: true, Filterable: true},
		{ID: "status", Title: "Status", Sortable: true, Filterable: true},
		{ID: "comment", Title: "Comment"},
	}}
	Reports = Collection[domain.Report]{Name: "reports", Path: "/reports", Title: "Reports", Columns: []listquery.Column{
		{ID: "id", Title: "ID", Sortable: true},
		{ID: "subject_type", Title: "Subject", Sortable: true, Filterable: true},
		{ID: "subject_id", Title: "Subject ID", Filterable: true},
		{ID: "reason", Title: "Reason"},
		{ID: "status", Title: "Status", Sortable: true, Filterable: true},
		{ID: "created_at", Title: "Filed", Sortable: true},
	}}
	States = Collection[domain.State]{Name: "states", Path: "/states", Title: "States", Columns: []listquery.Column{
		{ID: "id", Title: "ID", Sortable: true},
		{ID: "name", Title: "Name", Sortable: true, Filterable: true},
		{ID: "code", Title: "Code", Sortable: true, Filterable: true},
	}}
	Cities = Collection[domain.City]{Name: "cities", Path: "/cities", Title: "Cities", Columns: []listquery.Column{
		{ID: "id", Title: "ID", Sortable: true},
		{ID: "name", Title: "Name", Sortable: true, Filterable: true},
		{ID: "state_id", Title: "State", Sortable: true, Filterable: true},
	}}
	Campaigns = Collection[domain.Campaign]{Name: "campaigns", Path: "/campaigns", Title: "Campaigns", Columns: []listquery.Column{
		{ID: "id", Title: "ID", Sortable: true},
		{ID: "name", Title: "Name", Sortable: true, Filterable: true},
		{ID: "channel", Title: "Channel", Sortable: true, Filterable: true},
		{ID: "status", Title: "Status", Sortable: true, Filterable: true},
		{ID: "budget", Title: "Budget", Sortable: true},
		{ID: "starts_at", Title: "Starts", Sortable: true},
		{ID: "ends_at", Title: "Ends", Sortable: true},
	}}
	Students = Collection[domain.Student]{Name: "students", Path: "/students", Title: "Students", Columns: []listquery.Column{
		{ID: "id", Title: "ID", Sortable: true},
		{ID: "first_name", Title: "First name", Sortable: true, Filterable: true},
		{ID: "last_name", Title: "Last name", Sortable: true, Filterable: true},
		{ID: "email", Title: "Email", Filterable: true},
		{ID: "grade", Title: "Grade", Sortable: true, Filterable: true},
		{ID: "status", Title: "Status", Sortable: true, Filterable: true},
	}}
	Vouchers = Collection[domain.Voucher]{Name: "vouchers", Path: "/vouchers", Title: "Vouchers", Columns: []listquery.Column{
		{ID: "id", Title: "ID", Sortable: true},
		{ID: "code", Title: "Code", Sortable: true, Filterable: true},
		{ID: "discount", Title: "Discount", Sortable: true},
		{ID: "kind", Title: "Kind", Filterable: true},
		{ID: "expires_at", Title: "Expires", Sortable: true},
		{ID: "redeemed", Title: "Redeemed"},
	}}
)

var registry = map[string]Collection[Records]{}

func init() {
	for _, c := range []Collection[Records]{
		Users.Untyped(), Admins.Untyped(), Roles.Untyped(), Vendors.Untyped(),
		Articles.Untyped(), Reviews.Untyped(), Reports.Untyped(), States.Untyped(),
		Cities.Untyped(), Campaigns.Untyped(), Students.Untyped(), Vouchers.Untyped(),
	} {
		registry[c.Name] = c
	}
}

// Lookup returns the untyped descriptor of the named collection.
func Lookup(name string) (Collection[Records], bool) {
	c, ok := registry[name]
	if !ok {
		return Collection[Records]{}, false
	}
	c.Columns = slices.Clone(c.Columns)
	return c, true
}

// Names lists every known collection in alphabetical order.
func Names() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// CitiesOfState lists the cities of one state through the nested endpoint.
func CitiesOfState(stateID uint) Collection[domain.City] {
	c := Cities
	c.Path = "/states/" + formatID(stateID) + "/cities"
	return c
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

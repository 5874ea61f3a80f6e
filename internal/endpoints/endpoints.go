// Package endpoints lists the API paths the client talks to, relative to the
// configured base URL.
package endpoints

import (
	"fmt"

	"github.com/nape-ntsoane/trax/internal/models"
)

const (
	Login    = "/auth/jwt/login"
	Logout   = "/auth/jwt/logout"
	Register = "/auth/register"
	Me       = "/users/me"

	Folders   = "/folders/"
	Dashboard = "/folders/dashboard"

	Applications = "/applications/"

	Selects = "/selects/"
	Search  = "/search/"
)

func Folder(id int64) string {
	return fmt.Sprintf("/folders/%d", id)
}

func FolderApplications(id int64) string {
	return fmt.Sprintf("/folders/%d/applications", id)
}

func Application(id int64) string {
	return fmt.Sprintf("/applications/%d", id)
}

// SelectKind is the collection path of one option kind, e.g. /selects/tags.
func SelectKind(kind models.SelectKind) string {
	return "/selects/" + string(kind)
}

func SelectOption(kind models.SelectKind, id int64) string {
	return fmt.Sprintf("/selects/%s/%d", kind, id)
}

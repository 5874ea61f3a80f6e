package cli

import (
	"context"
	"flag"
	"fmt"
	"strconv"
	"strings"

	"github.com/nape-ntsoane/trax/internal/endpoints"
	"github.com/nape-ntsoane/trax/internal/models"
)

func init() {
	register(
		command{name: "login", summary: "sign in and store the session token", public: true, run: (*App).login},
		command{name: "register", summary: "create an account", public: true, run: (*App).register},
		command{name: "logout", summary: "sign out and forget the session token", public: true, run: (*App).logout},
		command{name: "whoami", summary: "show the signed-in user", run: (*App).whoami},

		command{name: "folders", summary: "show the folder dashboard", run: (*App).folders},
		command{name: "folder-add", summary: "create a folder", run: (*App).folderAdd},
		command{name: "folder-rename", summary: "rename or reorder a folder", run: (*App).folderRename},
		command{name: "folder-rm", summary: "delete a folder, keeping its applications", run: (*App).folderRemove},

		command{name: "apps", summary: "list applications", run: (*App).apps},
		command{name: "app-show", summary: "show one application", run: (*App).appShow},
		command{name: "app-add", summary: "create an application", run: (*App).appAdd},
		command{name: "app-update", summary: "update an application", run: (*App).appUpdate},
		command{name: "app-star", summary: "star or unstar an application", run: (*App).appStar},
		command{name: "app-rm", summary: "delete an application", run: (*App).appRemove},

		command{name: "selects", summary: "list tags, statuses and priorities", run: (*App).selects},
		command{name: "select-add", summary: "create a tag, status or priority", run: (*App).selectAdd},
		command{name: "select-update", summary: "update a tag, status or priority", run: (*App).selectUpdate},
		command{name: "select-rm", summary: "delete a tag, status or priority", run: (*App).selectRemove},

		command{name: "search", summary: "search folders and applications", run: (*App).search},
	)
}

func (a *App) login(ctx context.Context, args []string) error {
	fs := a.flags("login")
	email := fs.String("email", "", "account email")
	password := fs.String("password", "", "account password")
	set, err := parse(fs, args)
	if err != nil {
		return err
	}
	if err := required(fs, set, "email", "password"); err != nil {
		return err
	}
	if _, err := a.auth.Login(ctx, *email, *password); err != nil {
		return err
	}
	fmt.Fprintf(a.stdout, "signed in as %s\n", *email)
	return nil
}

func (a *App) register(ctx context.Context, args []string) error {
	fs := a.flags("register")
	email := fs.String("email", "", "account email")
	password := fs.String("password", "", "account password")
	set, err := parse(fs, args)
	if err != nil {
		return err
	}
	if err := required(fs, set, "email", "password"); err != nil {
		return err
	}
	user, err := a.auth.Register(ctx, *email, *password)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.stdout, "registered %s; run `trax login` to sign in\n", user.Email)
	return nil
}

func (a *App) logout(ctx context.Context, args []string) error {
	if _, err := parse(a.flags("logout"), args); err != nil {
		return err
	}
	if err := a.auth.Logout(ctx); err != nil {
		return err
	}
	fmt.Fprintln(a.stdout, "signed out")
	return nil
}

func (a *App) whoami(ctx context.Context, args []string) error {
	if _, err := parse(a.flags("whoami"), args); err != nil {
		return err
	}
	user, err := a.auth.Me(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.stdout, "%s (%s)\n", user.Email, user.ID)
	return nil
}

func (a *App) folders(ctx context.Context, args []string) error {
	if _, err := parse(a.flags("folders"), args); err != nil {
		return err
	}
	page, err := a.res.Folders().Load(ctx)
	if err != nil {
		return err
	}
	return renderDashboard(a.stdout, page)
}

func (a *App) showFolders(ctx context.Context) error {
	page, err := a.res.Folders().Mutate(ctx)
	if err != nil {
		return err
	}
	return renderDashboard(a.stdout, page)
}

func (a *App) folderAdd(ctx context.Context, args []string) error {
	fs := a.flags("folder-add")
	title := fs.String("title", "", "folder title")
	position := fs.Int("position", 0, "sort position")
	set, err := parse(fs, args)
	if err != nil {
		return err
	}
	if err := required(fs, set, "title"); err != nil {
		return err
	}
	folder, err := a.res.CreateFolder(ctx, models.FolderCreate{Title: *title, Position: *position})
	if err != nil {
		return err
	}
	fmt.Fprintf(a.stdout, "created folder %d\n", folder.ID)
	return a.showFolders(ctx)
}

func (a *App) folderRename(ctx context.Context, args []string) error {
	fs := a.flags("folder-rename")
	id := fs.Int64("id", 0, "folder id")
	title := fs.String("title", "", "new title")
	position := fs.Int("position", 0, "new sort position")
	set, err := parse(fs, args)
	if err != nil {
		return err
	}
	if err := required(fs, set, "id"); err != nil {
		return err
	}
	in := models.FolderUpdate{Title: optional(set, "title", title), Position: optional(set, "position", position)}
	if _, err := a.res.UpdateFolder(ctx, *id, in); err != nil {
		return err
	}
	return a.showFolders(ctx)
}

func (a *App) folderRemove(ctx context.Context, args []string) error {
	fs := a.flags("folder-rm")
	id := fs.Int64("id", 0, "folder id")
	set, err := parse(fs, args)
	if err != nil {
		return err
	}
	if err := required(fs, set, "id"); err != nil {
		return err
	}
	if err := a.res.DeleteFolder(ctx, *id); err != nil {
		return err
	}
	fmt.Fprintf(a.stdout, "deleted folder %d\n", *id)
	return a.showFolders(ctx)
}

type listFlags struct {
	folder  *int64
	page    *int
	perPage *int
	sortBy  *string
	order   *string
}

func addListFlags(fs *flag.FlagSet) listFlags {
	def := models.DefaultListQuery()
	return listFlags{
		folder:  fs.Int64("folder", 0, "only applications in this folder"),
		page:    fs.Int("page", def.Page, "page number"),
		perPage: fs.Int("per-page", def.PerPage, "applications per page"),
		sortBy:  fs.String("sort", def.SortBy, "title, company, created_at, updated_at, closing_date or position"),
		order:   fs.String("order", def.SortOrder, "asc or desc"),
	}
}

func (l listFlags) query() (*int64, models.ListQuery) {
	q := models.ListQuery{Page: *l.page, PerPage: *l.perPage, SortBy: *l.sortBy, SortOrder: *l.order}
	if *l.folder > 0 {
		id := *l.folder
		return &id, q
	}
	return nil, q
}

func (a *App) apps(ctx context.Context, args []string) error {
	fs := a.flags("apps")
	lf := addListFlags(fs)
	if _, err := parse(fs, args); err != nil {
		return err
	}
	folderID, q := lf.query()
	if err := models.Validate(q); err != nil {
		return err
	}
	page, err := a.res.Applications(folderID, q).Load(ctx)
	if err != nil {
		return err
	}
	return renderApplications(a.stdout, page)
}

// refreshApplications revalidates the views an application write touches.
// Other folder listings are dropped since the application may have moved.
func (a *App) refreshApplications(ctx context.Context, folderID *int64) {
	a.res.Cache().Invalidate(endpoints.Folders)
	q := models.DefaultListQuery()
	_, _ = a.res.Applications(nil, q).Mutate(ctx)
	if folderID != nil {
		_, _ = a.res.Applications(folderID, q).Mutate(ctx)
	}
	_, _ = a.res.Folders().Mutate(ctx)
}

func (a *App) appShow(ctx context.Context, args []string) error {
	fs := a.flags("app-show")
	id := fs.Int64("id", 0, "application id")
	set, err := parse(fs, args)
	if err != nil {
		return err
	}
	if err := required(fs, set, "id"); err != nil {
		return err
	}
	app, err := a.res.GetApplication(ctx, *id)
	if err != nil {
		return err
	}
	return renderApplication(a.stdout, *app)
}

type applicationFlags struct {
	title       *string
	company     *string
	role        *string
	salary      *string
	link        *string
	closing     *string
	folder      *int64
	status      *int64
	priority    *int64
	tags        *string
	starred     *bool
	position    *int
	description *string
	notes       *string
}

func addApplicationFlags(fs *flag.FlagSet) applicationFlags {
	return applicationFlags{
		title:       fs.String("title", "", "job title"),
		company:     fs.String("company", "", "company name"),
		role:        fs.String("role", "", "role"),
		salary:      fs.String("salary", "", "salary"),
		link:        fs.String("link", "", "posting URL"),
		closing:     fs.String("closing", "", "closing date (YYYY-MM-DD)"),
		folder:      fs.Int64("folder", 0, "folder id"),
		status:      fs.Int64("status", 0, "status option id"),
		priority:    fs.Int64("priority", 0, "priority option id"),
		tags:        fs.String("tags", "", "comma separated tag option ids"),
		starred:     fs.Bool("starred", false, "starred"),
		position:    fs.Int("position", 0, "sort position"),
		description: fs.String("description", "", "description"),
		notes:       fs.String("notes", "", "notes"),
	}
}

func (a *App) appAdd(ctx context.Context, args []string) error {
	fs := a.flags("app-add")
	af := addApplicationFlags(fs)
	set, err := parse(fs, args)
	if err != nil {
		return err
	}
	in := models.ApplicationCreate{
		Title:       *af.title,
		Company:     *af.company,
		Role:        *af.role,
		Salary:      *af.salary,
		Link:        *af.link,
		Starred:     *af.starred,
		Position:    *af.position,
		Description: *af.description,
		Notes:       *af.notes,
		FolderID:    optional(set, "folder", af.folder),
		StatusID:    optional(set, "status", af.status),
		PriorityID:  optional(set, "priority", af.priority),
	}
	if set["closing"] {
		if in.ClosingDate, err = parseDate(*af.closing); err != nil {
			return err
		}
	}
	if set["tags"] {
		if in.TagIDs, err = parseIDs(*af.tags); err != nil {
			return err
		}
	}

	app, err := a.res.CreateApplication(ctx, in)
	if err != nil {
		return err
	}
	a.refreshApplications(ctx, app.FolderID)
	return renderApplication(a.stdout, *app)
}

func (a *App) appUpdate(ctx context.Context, args []string) error {
	fs := a.flags("app-update")
	id := fs.Int64("id", 0, "application id")
	clearFields := fs.String("clear", "", "comma separated fields to set to null: folder, status, priority, closing")
	af := addApplicationFlags(fs)
	set, err := parse(fs, args)
	if err != nil {
		return err
	}
	if err := required(fs, set, "id"); err != nil {
		return err
	}
	cleared, err := a.clearedFields(fs, set, *clearFields)
	if err != nil {
		return err
	}

	in := models.ApplicationUpdate{
		Title:       optional(set, "title", af.title),
		Company:     optional(set, "company", af.company),
		Role:        optional(set, "role", af.role),
		Salary:      optional(set, "salary", af.salary),
		Link:        optional(set, "link", af.link),
		FolderID:    nullable(set, cleared, "folder", *af.folder),
		StatusID:    nullable(set, cleared, "status", *af.status),
		PriorityID:  nullable(set, cleared, "priority", *af.priority),
		Starred:     optional(set, "starred", af.starred),
		Position:    optional(set, "position", af.position),
		Description: optional(set, "description", af.description),
		Notes:       optional(set, "notes", af.notes),
	}
	switch {
	case cleared["closing"]:
		in.ClosingDate = models.Null[models.Date]()
	case set["closing"]:
		closing, err := parseDate(*af.closing)
		if err != nil {
			return err
		}
		in.ClosingDate = models.Some(*closing)
	}
	if set["tags"] {
		ids, err := parseIDs(*af.tags)
		if err != nil {
			return err
		}
		in.TagIDs = &ids
	}

	app, err := a.res.UpdateApplication(ctx, *id, in)
	if err != nil {
		return err
	}
	a.refreshApplications(ctx, app.FolderID)
	return renderApplication(a.stdout, *app)
}

func (a *App) appStar(ctx context.Context, args []string) error {
	fs := a.flags("app-star")
	id := fs.Int64("id", 0, "application id")
	off := fs.Bool("off", false, "unstar instead")
	set, err := parse(fs, args)
	if err != nil {
		return err
	}
	if err := required(fs, set, "id"); err != nil {
		return err
	}
	starred := !*off
	app, err := a.res.UpdateApplication(ctx, *id, models.ApplicationUpdate{Starred: &starred})
	if err != nil {
		return err
	}
	a.refreshApplications(ctx, app.FolderID)
	return renderApplication(a.stdout, *app)
}

func (a *App) appRemove(ctx context.Context, args []string) error {
	fs := a.flags("app-rm")
	id := fs.Int64("id", 0, "application id")
	set, err := parse(fs, args)
	if err != nil {
		return err
	}
	if err := required(fs, set, "id"); err != nil {
		return err
	}
	app, err := a.res.GetApplication(ctx, *id)
	if err != nil {
		return err
	}
	if err := a.res.DeleteApplication(ctx, *id); err != nil {
		return err
	}
	fmt.Fprintf(a.stdout, "deleted application %d\n", *id)
	a.refreshApplications(ctx, app.FolderID)

	page, err := a.res.Applications(app.FolderID, models.DefaultListQuery()).Load(ctx)
	if err != nil {
		return err
	}
	return renderApplications(a.stdout, page)
}

func (a *App) selects(ctx context.Context, args []string) error {
	if _, err := parse(a.flags("selects"), args); err != nil {
		return err
	}
	sel, err := a.res.Selects().Load(ctx)
	if err != nil {
		return err
	}
	return renderSelects(a.stdout, sel)
}

func (a *App) showSelects(ctx context.Context) error {
	sel, err := a.res.Selects().Mutate(ctx)
	if err != nil {
		return err
	}
	return renderSelects(a.stdout, sel)
}

func selectKindFlag(fs *flag.FlagSet) *string {
	return fs.String("kind", "", "tags, statuses or priorities")
}

func (a *App) kind(name, raw string) (models.SelectKind, error) {
	kind, ok := models.ParseSelectKind(raw)
	if !ok {
		fmt.Fprintf(a.stderr, "%s: -kind must be tags, statuses or priorities\n", name)
		return "", errUsage
	}
	return kind, nil
}

func (a *App) selectAdd(ctx context.Context, args []string) error {
	fs := a.flags("select-add")
	rawKind := selectKindFlag(fs)
	title := fs.String("title", "", "option title")
	color := fs.String("color", "", "option color")
	set, err := parse(fs, args)
	if err != nil {
		return err
	}
	if err := required(fs, set, "kind", "title"); err != nil {
		return err
	}
	kind, err := a.kind("select-add", *rawKind)
	if err != nil {
		return err
	}
	if _, err := a.res.CreateSelect(ctx, kind, models.SelectCreate{Title: *title, Color: *color}); err != nil {
		return err
	}
	return a.showSelects(ctx)
}

func (a *App) selectUpdate(ctx context.Context, args []string) error {
	fs := a.flags("select-update")
	rawKind := selectKindFlag(fs)
	id := fs.Int64("id", 0, "option id")
	title := fs.String("title", "", "new title")
	color := fs.String("color", "", "new color")
	set, err := parse(fs, args)
	if err != nil {
		return err
	}
	if err := required(fs, set, "kind", "id"); err != nil {
		return err
	}
	kind, err := a.kind("select-update", *rawKind)
	if err != nil {
		return err
	}
	in := models.SelectUpdate{Title: optional(set, "title", title), Color: optional(set, "color", color)}
	if _, err := a.res.UpdateSelect(ctx, kind, *id, in); err != nil {
		return err
	}
	return a.showSelects(ctx)
}

func (a *App) selectRemove(ctx context.Context, args []string) error {
	fs := a.flags("select-rm")
	rawKind := selectKindFlag(fs)
	id := fs.Int64("id", 0, "option id")
	set, err := parse(fs, args)
	if err != nil {
		return err
	}
	if err := required(fs, set, "kind", "id"); err != nil {
		return err
	}
	kind, err := a.kind("select-rm", *rawKind)
	if err != nil {
		return err
	}
	if err := a.res.DeleteSelect(ctx, kind, *id); err != nil {
		return err
	}
	return a.showSelects(ctx)
}

func (a *App) search(ctx context.Context, args []string) error {
	fs := a.flags("search")
	query := fs.String("q", "", "text to search for")
	page := fs.Int("page", 1, "page number")
	perPage := fs.Int("per-page", 10, "results per page")
	set, err := parse(fs, args)
	if err != nil {
		return err
	}
	if err := required(fs, set, "q"); err != nil {
		return err
	}
	result, err := a.res.Search(ctx, *query, *page, *perPage)
	if err != nil {
		return err
	}
	return renderSearch(a.stdout, *result)
}

// optional returns v when the flag was given on the command line.
func optional[T any](set map[string]bool, name string, v *T) *T {
	if !set[name] {
		return nil
	}
	return v
}

// nullable builds a clearable field from a flag and the -clear list.
func nullable(set, cleared map[string]bool, name string, v int64) models.Nullable[int64] {
	switch {
	case cleared[name]:
		return models.Null[int64]()
	case set[name]:
		return models.Some(v)
	}
	return models.Nullable[int64]{}
}

var clearable = map[string]bool{"folder": true, "status": true, "priority": true, "closing": true}

func (a *App) clearedFields(fs *flag.FlagSet, set map[string]bool, raw string) (map[string]bool, error) {
	cleared := make(map[string]bool)
	for _, name := range strings.Split(raw, ",") {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		if !clearable[name] {
			fmt.Fprintf(fs.Output(), "%s: cannot clear %q; clearable fields are folder, status, priority, closing\n", fs.Name(), name)
			return nil, errUsage
		}
		if set[name] {
			fmt.Fprintf(fs.Output(), "%s: -%s and -clear %s conflict\n", fs.Name(), name, name)
			return nil, errUsage
		}
		cleared[name] = true
	}
	return cleared, nil
}

func parseDate(raw string) (*models.Date, error) {
	d, err := models.ParseDate(strings.TrimSpace(raw))
	if err != nil {
		return nil, fmt.Errorf("closing date %q: want YYYY-MM-DD", raw)
	}
	return &d, nil
}

func parseIDs(raw string) ([]int64, error) {
	ids := []int64{}
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		id, err := strconv.ParseInt(part, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid id %q", part)
		}
		ids = append(ids, id)
	}
	return ids, nil
}

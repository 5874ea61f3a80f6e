package cli

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/nape-ntsoane/trax/internal/models"
)

func newTable(w io.Writer) *tabwriter.Writer {
	return tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
}

func renderDashboard(w io.Writer, page models.Page[models.FolderSummary]) error {
	tw := newTable(w)
	fmt.Fprintln(tw, "ID\tFOLDER\tAPPLICATIONS\tRECENT")
	for _, item := range page.Items {
		id, title := "-", "Unfiled"
		if item.Folder != nil {
			id, title = strconv.FormatInt(item.Folder.ID, 10), item.Folder.Title
		}
		recent := make([]string, 0, len(item.RecentApplications))
		for _, app := range item.RecentApplications {
			recent = append(recent, app.Title+" @ "+app.Company)
		}
		fmt.Fprintf(tw, "%s\t%s\t%d\t%s\n", id, title, item.ApplicationCount, orDash(strings.Join(recent, "; ")))
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	return renderFooter(w, page.Page, page.PerPage, page.Total)
}

func renderApplications(w io.Writer, page models.Page[models.Application]) error {
	tw := newTable(w)
	fmt.Fprintln(tw, "ID\tTITLE\tCOMPANY\tSTATUS\tPRIORITY\tSTAR\tCLOSING\tUPDATED")
	for _, app := range page.Items {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			app.ID, app.Title, app.Company,
			optionTitle(app.Status), optionTitle(app.Priority),
			star(app.Starred), date(app.ClosingDate), app.UpdatedAt.Format(time.DateOnly))
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	return renderFooter(w, page.Page, page.PerPage, page.Total)
}

func renderApplication(w io.Writer, app models.Application) error {
	tags := make([]string, 0, len(app.Tags))
	for _, tag := range app.Tags {
		tags = append(tags, tag.Title)
	}
	folder := "-"
	if app.FolderID != nil {
		folder = strconv.FormatInt(*app.FolderID, 10)
	}

	tw := newTable(w)
	rows := [][2]string{
		{"id", strconv.FormatInt(app.ID, 10)},
		{"title", app.Title},
		{"company", app.Company},
		{"role", orDash(app.Role)},
		{"folder", folder},
		{"status", optionTitle(app.Status)},
		{"priority", optionTitle(app.Priority)},
		{"tags", orDash(strings.Join(tags, ", "))},
		{"starred", strconv.FormatBool(app.Starred)},
		{"salary", orDash(app.Salary)},
		{"closing", date(app.ClosingDate)},
		{"link", orDash(app.Link)},
		{"description", orDash(app.Description)},
		{"notes", orDash(app.Notes)},
		{"updated", app.UpdatedAt.Format(time.RFC3339)},
	}
	for _, row := range rows {
		fmt.Fprintf(tw, "%s:\t%s\n", row[0], row[1])
	}
	return tw.Flush()
}

func renderSelects(w io.Writer, sel models.Selects) error {
	tw := newTable(w)
	fmt.Fprintln(tw, "KIND\tID\tTITLE\tCOLOR")
	for _, kind := range []models.SelectKind{models.KindTags, models.KindStatuses, models.KindPriorities} {
		for _, opt := range sel.Of(kind) {
			fmt.Fprintf(tw, "%s\t%d\t%s\t%s\n", kind, opt.ID, opt.Title, orDash(opt.Color))
		}
	}
	return tw.Flush()
}

func renderSearch(w io.Writer, result models.SearchResult) error {
	fmt.Fprintf(w, "Folders (%d)\n", result.Folders.Total)
	tw := newTable(w)
	fmt.Fprintln(tw, "ID\tFOLDER\tAPPLICATIONS")
	for _, f := range result.Folders.Items {
		fmt.Fprintf(tw, "%d\t%s\t%d\n", f.ID, f.Title, f.Count)
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	fmt.Fprintf(w, "\nApplications (%d)\n", result.Applications.Total)
	return renderApplications(w, result.Applications)
}

func renderFooter(w io.Writer, page, perPage, total int) error {
	pages := 1
	if perPage > 0 && total > 0 {
		pages = (total + perPage - 1) / perPage
	}
	_, err := fmt.Fprintf(w, "page %d of %d, %d total\n", page, pages, total)
	return err
}

func optionTitle(opt *models.SelectOption) string {
	if opt == nil {
		return "-"
	}
	return opt.Title
}

func star(v bool) string {
	if v {
		return "*"
	}
	return ""
}

func date(t *models.Date) string {
	if t == nil {
		return "-"
	}
	return t.Format(time.DateOnly)
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

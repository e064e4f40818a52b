package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"strings"
	"syscall"

	"github.com/volatiletech/null/v8"
	"go.uber.org/zap"
	"golang.org/x/term"

	"github.com/noah-isme/uniportal/internal/gate"
	"github.com/noah-isme/uniportal/internal/i18n"
	"github.com/noah-isme/uniportal/internal/models"
	"github.com/noah-isme/uniportal/internal/service"
	"github.com/noah-isme/uniportal/internal/session"
	"github.com/noah-isme/uniportal/pkg/apiclient"
	appErrors "github.com/noah-isme/uniportal/pkg/errors"
)

var (
	readPasswordFunc = term.ReadPassword // mockable

	errHelp = errors.New("help provided")
)

type commandLine struct {
	out          io.Writer
	store        *session.Store
	gate         *gate.Gate
	auth         *service.AuthService
	resolver     *service.ScheduleResolver
	schedules    *service.ScheduleService
	applications *service.ApplicationService
	approvals    *service.ApprovalService
	semesters    *service.SemesterService
	enrollment   *service.EnrollmentService
	catalog      *service.CourseService
	notices      *service.NoticeService
	grades       *service.GradeService
	departments  *service.DeptService
	members      *service.MemberService
	exports      *service.ExportService
	tr           *i18n.Translator
	logger       *zap.Logger
}

func (cli *commandLine) printUsage() {
	fmt.Fprintln(cli.out, "Usage:")
	fmt.Fprintln(cli.out, "  login -id LOGIN_ID                          - sign in (password is prompted)")
	fmt.Fprintln(cli.out, "  logout                                      - sign out")
	fmt.Fprintln(cli.out, "  whoami                                      - show the signed-in user")
	fmt.Fprintln(cli.out, "  profile [-pic URL | -clear-pic]             - reload the profile or change its picture")
	fmt.Fprintln(cli.out, "  authorize -path PATH [-from PATH]           - check a navigation")
	fmt.Fprintln(cli.out, "  resolve -type TYPE [-semester ID]           - find the open window for an action")
	fmt.Fprintln(cli.out, "  schedules [-month YYYY-MM] [-semester ID]   - list schedule windows")
	fmt.Fprintln(cli.out, "  next-semester [-semester ID]                - show the following semester")
	fmt.Fprintln(cli.out, "  apps                                        - list my applications")
	fmt.Fprintln(cli.out, "  apply -type TYPE [-reason TEXT]             - apply inside the open window")
	fmt.Fprintln(cli.out, "  cancel -app APP_ID                          - cancel a pending application")
	fmt.Fprintln(cli.out, "  approvals -year YEAR [-semester N]          - list applications to review")
	fmt.Fprintln(cli.out, "  decide -app ID -user ID -status S -type T   - approve or reject an application")
	fmt.Fprintln(cli.out, "  courses [-year Y] [-semester N] [-sort dept|title]  - list courses open for registration")
	fmt.Fprintln(cli.out, "  enroll -course ID | drop -course ID         - register for or drop a course")
	fmt.Fprintln(cli.out, "  catalog [-id ID | -today | -years] [-year Y] [-dept ID]  - browse the course catalogue")
	fmt.Fprintln(cli.out, "  notices [-q TEXT [-title]] [-id ID] [-delete]  - read or remove notices")
	fmt.Fprintln(cli.out, "  notice-post -title TEXT -content TEXT [-id ID] - post or edit a notice")
	fmt.Fprintln(cli.out, "  grades [-current | -gpa] [-year Y] [-semester N]  - show my transcript")
	fmt.Fprintln(cli.out, "  depts [-names] [-head ID] [-toggle ID]       - list departments or their heads")
	fmt.Fprintln(cli.out, "  members [-role R] [-dept ID] [-q TEXT]      - list portal members")
	fmt.Fprintln(cli.out, "  privacy [-email E] [-phone P] [-address A]  - show or update my contact record")
	fmt.Fprintln(cli.out, "  export -kind schedules|applications -format csv|pdf [-month YYYY-MM]")
}

func (cli *commandLine) run(ctx context.Context, args []string) error {
	if len(args) < 2 {
		cli.printUsage()
		return errHelp
	}

	switch args[1] {
	case "login":
		fs := flag.NewFlagSet("login", flag.ContinueOnError)
		loginID := fs.String("id", "", "The portal login id. The password will be prompted next.")
		if err := fs.Parse(args[2:]); err != nil {
			return err
		}
		if *loginID == "" {
			fs.Usage()
			return errHelp
		}
		fmt.Fprint(cli.out, "Enter password:")
		pwd, err := readPasswordFunc(int(syscall.Stdin))
		fmt.Fprintln(cli.out)
		if err != nil {
			return err
		}
		if len(pwd) == 0 {
			fs.Usage()
			return errHelp
		}
		return cli.login(ctx, *loginID, string(pwd))
	case "logout":
		if err := cli.auth.Logout(ctx); err != nil {
			return err
		}
		fmt.Fprintln(cli.out, cli.tr.T(ctx, "cli.logout.ok"))
		return nil
	case "whoami":
		return cli.whoami(ctx)
	case "profile":
		fs := flag.NewFlagSet("profile", flag.ContinueOnError)
		pic := fs.String("pic", "", "New profile picture reference.")
		clearPic := fs.Bool("clear-pic", false, "Remove the profile picture.")
		if err := fs.Parse(args[2:]); err != nil {
			return err
		}
		switch {
		case *clearPic:
			return cli.auth.UpdatePic(ctx, null.String{})
		case *pic != "":
			return cli.auth.UpdatePic(ctx, null.StringFrom(*pic))
		}
		user, err := cli.auth.Refresh(ctx)
		if err != nil {
			return err
		}
		return cli.printJSON(user)
	case "authorize":
		fs := flag.NewFlagSet("authorize", flag.ContinueOnError)
		path := fs.String("path", "", "Navigation target.")
		from := fs.String("from", "", "Path navigated from.")
		if err := fs.Parse(args[2:]); err != nil {
			return err
		}
		if *path == "" {
			fs.Usage()
			return errHelp
		}
		return cli.authorize(ctx, *path, *from)
	case "resolve":
		fs := flag.NewFlagSet("resolve", flag.ContinueOnError)
		scheduleType := fs.String("type", "", "Action type, e.g. course-registration or 휴학신청.")
		semester := fs.String("semester", "", "Semester id; defaults to the signed-in user's semester.")
		if err := fs.Parse(args[2:]); err != nil {
			return err
		}
		return cli.resolve(ctx, *semester, *scheduleType)
	case "schedules":
		fs := flag.NewFlagSet("schedules", flag.ContinueOnError)
		month := fs.String("month", "", "Month formatted YYYY-MM.")
		semester := fs.String("semester", "", "Semester id.")
		scheduleType := fs.String("type", "", "Action type.")
		if err := fs.Parse(args[2:]); err != nil {
			return err
		}
		return cli.listSchedules(ctx, scheduleFilter(*month, *semester, *scheduleType))
	case "next-semester":
		fs := flag.NewFlagSet("next-semester", flag.ContinueOnError)
		semester := fs.String("semester", "", "Semester id; defaults to the signed-in user's semester.")
		if err := fs.Parse(args[2:]); err != nil {
			return err
		}
		next, err := cli.semesters.NextSemesterID(ctx, cli.semesterOr(*semester))
		if err != nil {
			return err
		}
		return cli.printJSON(next)
	case "apps":
		apps, err := cli.applications.My(ctx, cli.store.Snapshot().SignedUser.UserID)
		if err != nil {
			return err
		}
		return cli.printApplications(ctx, apps)
	case "apply":
		fs := flag.NewFlagSet("apply", flag.ContinueOnError)
		scheduleType := fs.String("type", "", "Action type.")
		reason := fs.String("reason", "", "Reason attached to the application.")
		if err := fs.Parse(args[2:]); err != nil {
			return err
		}
		return cli.apply(ctx, *scheduleType, *reason)
	case "cancel":
		fs := flag.NewFlagSet("cancel", flag.ContinueOnError)
		appID := fs.String("app", "", "Application id.")
		if err := fs.Parse(args[2:]); err != nil {
			return err
		}
		if *appID == "" {
			fs.Usage()
			return errHelp
		}
		return cli.applications.Cancel(ctx, cli.store.Snapshot().SignedUser.UserID, *appID)
	case "approvals":
		fs := flag.NewFlagSet("approvals", flag.ContinueOnError)
		year := fs.Int("year", 0, "Academic year.")
		semester := fs.Int("semester", 0, "Semester number.")
		scheduleType := fs.String("type", "", "Action type.")
		if err := fs.Parse(args[2:]); err != nil {
			return err
		}
		t, _ := models.ParseScheduleType(*scheduleType)
		apps, err := cli.approvals.List(ctx, models.ApprovalFilter{Year: *year, Semester: *semester, ScheduleType: t})
		if err != nil {
			return err
		}
		return cli.printApplications(ctx, apps)
	case "decide":
		fs := flag.NewFlagSet("decide", flag.ContinueOnError)
		appID := fs.String("app", "", "Application id.")
		userID := fs.Int64("user", 0, "Applicant user id.")
		status := fs.String("status", "", "approved or rejected.")
		scheduleType := fs.String("type", "", "Action type.")
		if err := fs.Parse(args[2:]); err != nil {
			return err
		}
		st, _ := models.ParseApplicationStatus(*status)
		t, _ := models.ParseScheduleType(*scheduleType)
		return cli.approvals.Decide(ctx, models.DecisionRequest{AppID: *appID, UserID: *userID, Status: st, ScheduleType: t})
	case "courses":
		fs := flag.NewFlagSet("courses", flag.ContinueOnError)
		year := fs.Int("year", 0, "Academic year.")
		semester := fs.Int("semester", 0, "Semester number.")
		courseType := fs.String("type", "", "Course type.")
		keyword := fs.String("keyword", "", "Title keyword.")
		order := fs.String("sort", "dept", "dept or title.")
		if err := fs.Parse(args[2:]); err != nil {
			return err
		}
		filter := models.CourseFilter{Year: *year, Semester: *semester, Type: *courseType, Keyword: *keyword}
		return cli.listCourses(ctx, filter, *order)
	case "enroll", "drop":
		fs := flag.NewFlagSet(args[1], flag.ContinueOnError)
		courseID := fs.Int64("course", 0, "Course id.")
		if err := fs.Parse(args[2:]); err != nil {
			return err
		}
		if *courseID <= 0 {
			fs.Usage()
			return errHelp
		}
		if args[1] == "drop" {
			return cli.enrollment.Cancel(ctx, *courseID)
		}
		return cli.enrollment.Enroll(ctx, *courseID)
	case "catalog":
		fs := flag.NewFlagSet("catalog", flag.ContinueOnError)
		courseID := fs.Int64("id", 0, "Show one course and my enrollment id for it.")
		today := fs.Bool("today", false, "List today's courses.")
		years := fs.Bool("years", false, "List the years offering courses.")
		year := fs.Int("year", 0, "Academic year.")
		semester := fs.Int("semester", 0, "Semester number.")
		deptID := fs.Int64("dept", 0, "Department id.")
		keyword := fs.String("keyword", "", "Title keyword.")
		if err := fs.Parse(args[2:]); err != nil {
			return err
		}
		switch {
		case *courseID > 0:
			return cli.showCourse(ctx, *courseID)
		case *years:
			list, err := cli.catalog.Years(ctx)
			if err != nil {
				return err
			}
			return cli.printJSON(list)
		case *today:
			courses, err := cli.catalog.Today(ctx, cli.semesterOr(""))
			if err != nil {
				return err
			}
			cli.printCourses(courses)
			return nil
		}
		courses, err := cli.catalog.List(ctx, models.CourseFilter{Year: *year, Semester: *semester, DeptID: *deptID, Keyword: *keyword})
		if err != nil {
			return err
		}
		cli.printCourses(service.SortByDeptName(courses))
		return nil
	case "notices":
		fs := flag.NewFlagSet("notices", flag.ContinueOnError)
		keyword := fs.String("q", "", "Search keyword.")
		titleOnly := fs.Bool("title", false, "Match the keyword against titles only.")
		noticeID := fs.String("id", "", "Show one notice.")
		remove := fs.Bool("delete", false, "Delete the notice given by -id.")
		page := fs.Int("page", 0, "Page number.")
		if err := fs.Parse(args[2:]); err != nil {
			return err
		}
		if *noticeID != "" {
			if *remove {
				return cli.notices.Delete(ctx, *noticeID)
			}
			notice, err := cli.notices.Get(ctx, *noticeID)
			if err != nil {
				return err
			}
			return cli.printJSON(notice)
		}
		return cli.listNotices(ctx, models.NoticeFilter{Keyword: *keyword, TitleOnly: *titleOnly, Page: *page})
	case "notice-post":
		fs := flag.NewFlagSet("notice-post", flag.ContinueOnError)
		title := fs.String("title", "", "Notice title.")
		content := fs.String("content", "", "Notice body.")
		noticeID := fs.String("id", "", "Edit this notice instead of posting a new one.")
		if err := fs.Parse(args[2:]); err != nil {
			return err
		}
		req := models.NoticePayload{Title: *title, Content: *content}
		if *noticeID != "" {
			return cli.notices.Update(ctx, *noticeID, req)
		}
		return cli.notices.Create(ctx, req)
	case "grades":
		fs := flag.NewFlagSet("grades", flag.ContinueOnError)
		current := fs.Bool("current", false, "Only the current semester.")
		gpa := fs.Bool("gpa", false, "Show grade point averages.")
		year := fs.Int("year", 0, "Academic year.")
		semester := fs.Int("semester", 0, "Semester number.")
		if err := fs.Parse(args[2:]); err != nil {
			return err
		}
		return cli.showGrades(ctx, *current, *gpa, models.GradeFilter{Year: *year, Semester: *semester})
	case "depts":
		fs := flag.NewFlagSet("depts", flag.ContinueOnError)
		names := fs.Bool("names", false, "Only department names.")
		head := fs.Int64("head", 0, "Show the head of this department.")
		toggle := fs.Int64("toggle", 0, "Open or close this department.")
		if err := fs.Parse(args[2:]); err != nil {
			return err
		}
		return cli.depts(ctx, *names, *head, *toggle)
	case "members":
		fs := flag.NewFlagSet("members", flag.ContinueOnError)
		role := fs.String("role", "", "student, professor or staff.")
		deptID := fs.Int64("dept", 0, "Department id.")
		keyword := fs.String("q", "", "Name keyword.")
		page := fs.Int("page", 0, "Page number.")
		if err := fs.Parse(args[2:]); err != nil {
			return err
		}
		r, _ := models.ParseUserRole(*role)
		list, err := cli.members.List(ctx, models.MemberFilter{Role: r, DeptID: *deptID, Keyword: *keyword, Page: *page})
		if err != nil {
			return err
		}
		for _, m := range list {
			fmt.Fprintf(cli.out, "%-6d %-10s %-12s %-10s %s\n", m.UserID, m.LoginID, m.UserName, m.UserRole, m.DeptName)
		}
		return nil
	case "privacy":
		fs := flag.NewFlagSet("privacy", flag.ContinueOnError)
		email := fs.String("email", "", "Contact email.")
		phone := fs.String("phone", "", "Contact phone.")
		address := fs.String("address", "", "Postal address.")
		if err := fs.Parse(args[2:]); err != nil {
			return err
		}
		return cli.privacy(ctx, *email, *phone, *address)
	case "export":
		fs := flag.NewFlagSet("export", flag.ContinueOnError)
		kind := fs.String("kind", "schedules", "schedules or applications.")
		format := fs.String("format", service.FormatCSV, "csv or pdf.")
		month := fs.String("month", "", "Month formatted YYYY-MM, schedules only.")
		semester := fs.String("semester", "", "Semester id, schedules only.")
		if err := fs.Parse(args[2:]); err != nil {
			return err
		}
		return cli.export(ctx, *kind, *format, scheduleFilter(*month, *semester, ""))
	default:
		cli.printUsage()
		return errHelp
	}
}

func (cli *commandLine) login(ctx context.Context, loginID, password string) error {
	resp, err := cli.auth.Login(ctx, models.LoginRequest{LoginID: loginID, Password: password})
	if err != nil {
		return err
	}
	fmt.Fprintln(cli.out, cli.tr.T(ctx, "cli.login.ok", map[string]any{"Name": resp.User.UserName}))
	return nil
}

func (cli *commandLine) whoami(ctx context.Context) error {
	state := cli.store.Snapshot()
	if !state.IsSigned {
		fmt.Fprintln(cli.out, cli.tr.T(ctx, "cli.whoami.anonymous"))
		return nil
	}
	view := map[string]interface{}{"user": state.SignedUser, "checked": state.Checked}
	if claims, ok := apiclient.InspectToken(state.AccessToken); ok && !claims.ExpiresAt.IsZero() {
		view["tokenExpiresAt"] = claims.ExpiresAt
	}
	return cli.printJSON(view)
}

func (cli *commandLine) authorize(ctx context.Context, path, from string) error {
	decision, err := cli.gate.Authorize(ctx, path, from)
	if err != nil {
		return err
	}
	if decision.Allowed {
		fmt.Fprintln(cli.out, cli.tr.T(ctx, "cli.gate.allow", map[string]any{"Path": path}))
		return nil
	}
	fmt.Fprintln(cli.out, cli.tr.T(ctx, "cli.gate.redirect", map[string]any{
		"Path":     path,
		"Redirect": decision.Redirect,
		"Rule":     decision.Rule,
	}))
	return nil
}

func (cli *commandLine) resolve(ctx context.Context, semester, scheduleType string) error {
	window, err := cli.resolver.Resolve(ctx, cli.semesterOr(semester), scheduleType)
	if err != nil {
		return err
	}
	t, _ := models.ParseScheduleType(scheduleType)
	label := cli.tr.ScheduleType(ctx, t)
	if window == nil {
		fmt.Fprintln(cli.out, cli.tr.T(ctx, "cli.window.none", map[string]any{"Type": label}))
		return nil
	}
	fmt.Fprintln(cli.out, cli.tr.T(ctx, "cli.window.open", map[string]any{
		"Type":  label,
		"Start": window.StartDate.String,
		"End":   window.EndDate.String,
	}))
	return cli.printJSON(window)
}

func (cli *commandLine) apply(ctx context.Context, scheduleType, reason string) error {
	user := cli.store.Snapshot().SignedUser
	window, err := cli.resolver.Resolve(ctx, user.SemesterID, scheduleType)
	if err != nil {
		return err
	}
	if window == nil {
		return appErrors.Clone(appErrors.ErrWindowClosed, "no "+scheduleType+" window is open")
	}
	return cli.applications.Create(ctx, models.CreateApplicationRequest{
		UserID:       user.UserID,
		ScheduleID:   window.ScheduleID,
		ScheduleType: window.ScheduleType,
		SemesterID:   window.SemesterID.Int64,
		Reason:       reason,
	})
}

func (cli *commandLine) listSchedules(ctx context.Context, filter models.ScheduleFilter) error {
	windows, err := cli.schedules.List(ctx, filter)
	if err != nil {
		return err
	}
	for _, w := range windows {
		fmt.Fprintf(cli.out, "%-6s %-10s %-10s %s %s\n",
			w.ScheduleID, w.StartDate.String, w.EndDate.String, cli.tr.ScheduleType(ctx, w.ScheduleType), w.Description)
	}
	return nil
}

func (cli *commandLine) printApplications(ctx context.Context, apps []models.Application) error {
	for _, a := range apps {
		fmt.Fprintf(cli.out, "%-6s %-8s %-10s %s %s\n",
			a.AppID, cli.tr.Status(ctx, a.Status), a.SubmittedAt.String, cli.tr.ScheduleType(ctx, a.ScheduleType), a.Reason)
	}
	return nil
}

func (cli *commandLine) listCourses(ctx context.Context, filter models.CourseFilter, order string) error {
	mine, err := cli.enrollment.Mine(ctx, cli.semesterOr(""))
	if err != nil {
		return err
	}
	courses, err := cli.enrollment.Available(ctx, filter, mine)
	if err != nil {
		return err
	}
	if order == "title" {
		courses = service.SortByTitle(courses)
	} else {
		courses = service.SortByDeptName(courses)
	}
	cli.printCourses(courses)
	return nil
}

func (cli *commandLine) printCourses(courses []models.Course) {
	for _, c := range courses {
		mark := " "
		if c.Enrolled {
			mark = "*"
		}
		fmt.Fprintf(cli.out, "%s %-6d %-12s %-20s %-10s %d %s\n",
			mark, c.CourseID, c.DeptName, c.Title, c.ProfessorName, c.Credit, service.ClassTime(c.ClassCode))
	}
}

func (cli *commandLine) showCourse(ctx context.Context, courseID int64) error {
	course, err := cli.catalog.Get(ctx, courseID)
	if err != nil {
		return err
	}
	view := map[string]interface{}{"course": course, "classTime": service.ClassTime(course.ClassCode)}
	// Non-students have no enrollment id.
	if id, err := cli.catalog.EnrollmentID(ctx, courseID); err == nil {
		view["enrollmentId"] = id
	} else if !appErrors.IsNotFound(err) {
		cli.logger.Debug("enrollment lookup failed", zap.Int64("course_id", courseID), zap.Error(err))
	}
	return cli.printJSON(view)
}

func (cli *commandLine) listNotices(ctx context.Context, filter models.NoticeFilter) error {
	notices, err := cli.notices.List(ctx, filter)
	if err != nil {
		return err
	}
	if len(notices) == 0 {
		fmt.Fprintln(cli.out, cli.tr.T(ctx, "cli.notices.none"))
		return nil
	}
	for _, n := range notices {
		fmt.Fprintf(cli.out, "%-6s %-10s %-12s %s\n", n.NoticeID, n.CreatedAt.String, n.Writer, n.Title)
	}
	return nil
}

func (cli *commandLine) showGrades(ctx context.Context, current, gpa bool, filter models.GradeFilter) error {
	if gpa {
		averages, err := cli.grades.GPA(ctx, cli.semesterOr(""))
		if err != nil {
			return err
		}
		return cli.printJSON(averages)
	}
	var (
		grades []models.Grade
		err    error
	)
	if current {
		grades, err = cli.grades.Current(ctx, cli.semesterOr(""))
	} else {
		grades, err = cli.grades.Permanent(ctx, filter)
	}
	if err != nil {
		return err
	}
	for _, g := range grades {
		fmt.Fprintf(cli.out, "%d-%d %-6d %-20s %-3d %s\n",
			g.Year.Int, g.Semester.Int, g.CourseID, g.Title, g.Credit, g.Grade)
	}
	return nil
}

func (cli *commandLine) depts(ctx context.Context, names bool, head, toggle int64) error {
	switch {
	case toggle > 0:
		return cli.departments.ToggleStatus(ctx, toggle)
	case head > 0:
		d, err := cli.departments.Head(ctx, head)
		if err != nil {
			return err
		}
		return cli.printJSON(d)
	}
	var (
		list []models.Dept
		err  error
	)
	if names {
		list, err = cli.departments.Names(ctx)
	} else {
		list, err = cli.departments.List(ctx)
	}
	if err != nil {
		return err
	}
	for _, d := range list {
		fmt.Fprintf(cli.out, "%-4d %-16s %-10s %s\n", d.DeptID, d.DeptName, d.HeadName, d.Status)
	}
	return nil
}

func (cli *commandLine) privacy(ctx context.Context, email, phone, address string) error {
	p, err := cli.members.Privacy(ctx)
	if err != nil && !(appErrors.IsNotFound(err) && email+phone+address != "") {
		return err
	}
	if email == "" && phone == "" && address == "" {
		return cli.printJSON(p)
	}
	if p == nil {
		p = &models.Privacy{}
	}
	if email != "" {
		p.Email = email
	}
	if phone != "" {
		p.Phone = phone
	}
	if address != "" {
		p.Address = address
	}
	return cli.members.UpdatePrivacy(ctx, *p)
}

func (cli *commandLine) export(ctx context.Context, kind, format string, filter models.ScheduleFilter) error {
	var (
		result *service.ExportResult
		err    error
	)
	switch kind {
	case "schedules":
		result, err = cli.exports.Schedules(ctx, filter, format)
	case "applications":
		result, err = cli.exports.Applications(ctx, cli.store.Snapshot().SignedUser.UserID, format)
	default:
		return fmt.Errorf("unknown export kind %q", kind)
	}
	if err != nil {
		return err
	}
	fmt.Fprintln(cli.out, cli.tr.T(ctx, "cli.export.ok", map[string]any{"Count": result.Rows, "Path": result.Path}))

	removed, err := cli.exports.Cleanup(0)
	if err != nil {
		cli.logger.Warn("export cleanup failed", zap.Error(err))
	} else if len(removed) > 0 {
		cli.logger.Debug("expired exports removed", zap.Strings("files", removed))
	}
	return nil
}

// semesterOr falls back to the signed-in user's semester when raw is blank.
func (cli *commandLine) semesterOr(raw string) interface{} {
	if strings.TrimSpace(raw) != "" {
		return raw
	}
	return cli.store.Snapshot().SignedUser.SemesterID
}

func (cli *commandLine) printJSON(v interface{}) error {
	enc := json.NewEncoder(cli.out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func scheduleFilter(month, semester, scheduleType string) models.ScheduleFilter {
	t, _ := models.ParseScheduleType(scheduleType)
	return models.ScheduleFilter{
		Month:        month,
		SemesterID:   service.CoerceSemesterID(semester),
		ScheduleType: t,
	}
}

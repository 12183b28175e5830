package cvrecords

import (
	"context"
	"io"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"cvportal/internal/apperr"
	"cvportal/internal/audit"
	"cvportal/internal/blob"
	"cvportal/internal/logger"
	"cvportal/internal/metrics"
	"cvportal/internal/models"
	"cvportal/internal/rbac"
	"cvportal/internal/store"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/suite"
)

var (
	admin     = rbac.Actor{ID: 1, Username: "admin", Role: rbac.RoleAdmin}
	superUser = rbac.Actor{ID: 2, Username: "super", Role: rbac.RoleSuperUser}
	manager   = rbac.Actor{ID: 3, Username: "manager", Role: rbac.RoleManager}
	clerk     = rbac.Actor{ID: 4, Username: "clerk", Role: rbac.RoleUser}
)

func ptr[T any](v T) *T { return &v }

type CVSuite struct {
	suite.Suite
	ctx   context.Context
	p     *store.Provider
	rec   *audit.Recorder
	blobs *blob.LocalStore
	dir   string
	m     *metrics.Metrics
	svc   *Service
}

func TestCVSuite(t *testing.T) {
	suite.Run(t, new(CVSuite))
}

func (s *CVSuite) SetupTest() {
	p, err := store.NewMemory(logger.Nop())
	s.Require().NoError(err)
	s.p = p
	s.ctx = context.Background()
	s.rec = audit.NewRecorder(p, logger.Nop())
	s.dir = filepath.Join(s.T().TempDir(), "uploads")
	s.blobs, err = blob.NewLocalStore(s.dir)
	s.Require().NoError(err)
	s.m = metrics.New()
	s.svc = NewService(p, s.rec, s.blobs, s.m, logger.Nop())
}

func (s *CVSuite) TearDownTest() {
	_ = s.p.Close()
}

func (s *CVSuite) historyCount() int64 {
	var n int64
	s.Require().NoError(s.p.DB(s.ctx).Model(&models.VersionHistoryEntry{}).Count(&n).Error)
	return n
}

func (s *CVSuite) recordCount() int64 {
	var n int64
	s.Require().NoError(s.p.DB(s.ctx).Model(&models.CVRecord{}).Count(&n).Error)
	return n
}

func (s *CVSuite) create(name, email, position string) *models.CVRecord {
	r, err := s.svc.Create(s.ctx, admin, Input{Name: ptr(name), Email: ptr(email), Position: ptr(position)}, nil)
	s.Require().NoError(err)
	return r
}

func (s *CVSuite) TestCreate_AsCaptureUser() {
	r, err := s.svc.Create(s.ctx, clerk, Input{Name: ptr("John"), Email: ptr("john@x.com"), Position: ptr("Developer")}, nil)
	s.Require().NoError(err)
	s.NotZero(r.ID)
	s.Equal(models.StatusPending, r.Status)
	s.False(r.SubmittedAt.IsZero())

	entries, err := s.rec.ForRecord(s.ctx, admin, audit.TableCVRecords, r.ID)
	s.Require().NoError(err)
	s.Require().Len(entries, 1)
	e := entries[0]
	s.Equal(models.ActionCreate, e.Action)
	s.Nil(e.OldValues)
	s.Equal("clerk", e.Username)

	want, err := r.Snapshot()
	s.Require().NoError(err)
	s.Empty(audit.Diff(want, e.NewValues))
	s.Equal(float64(1), testutil.ToFloat64(s.m.Mutations.WithLabelValues("cv_records", "CREATE")))
}

func (s *CVSuite) TestCreate_Validation() {
	_, err := s.svc.Create(s.ctx, admin, Input{Name: ptr(""), Email: ptr("bad"), Experience: ptr(-1)}, nil)
	var ve *apperr.ValidationError
	s.Require().ErrorAs(err, &ve)
	s.Equal("is required", ve.Fields["name"])
	s.Equal("must be a valid email address", ve.Fields["email"])
	s.Equal("is required", ve.Fields["position"])
	s.Equal("must not be negative", ve.Fields["experience"])
	s.Zero(s.recordCount())
	s.Zero(s.historyCount())
}

func (s *CVSuite) TestCreate_ExplicitStatusAndNested() {
	r, err := s.svc.Create(s.ctx, admin, Input{
		Name:            ptr("Jane"),
		Email:           ptr("jane@x.com"),
		Position:        ptr("Analyst"),
		Status:          ptr(models.StatusActive),
		WorkExperiences: &[]models.WorkExperience{{CompanyName: "Acme", StartDate: "01/2020", IsCurrentRole: true}},
		CertificateTypes: &[]models.CertificateType{
			{Department: "SAP", Role: "Basis", CertificateName: "SAP Certified"},
		},
	}, nil)
	s.Require().NoError(err)

	got, err := s.svc.Get(s.ctx, admin, r.ID)
	s.Require().NoError(err)
	s.Equal(models.StatusActive, got.Status)
	s.Require().Len(got.WorkExperiences, 1)
	s.Equal("Acme", got.WorkExperiences[0].CompanyName)
	s.Require().Len(got.CertificateTypes, 1)
}

func (s *CVSuite) TestCreate_BadWorkExperienceDate() {
	_, err := s.svc.Create(s.ctx, admin, Input{
		Name: ptr("Jane"), Email: ptr("jane@x.com"), Position: ptr("Analyst"),
		WorkExperiences: &[]models.WorkExperience{{CompanyName: "Acme", StartDate: "2020-01"}},
	}, nil)
	var ve *apperr.ValidationError
	s.Require().ErrorAs(err, &ve)
	s.Contains(ve.Fields, "workExperiences[0].startDate")
}

func (s *CVSuite) TestForbiddenBeforeValidation() {
	_, err := s.svc.Create(s.ctx, manager, Input{}, nil)
	s.ErrorIs(err, apperr.ErrForbidden)

	_, err = s.svc.Update(s.ctx, manager, 999, Input{Email: ptr("bad")}, nil)
	s.ErrorIs(err, apperr.ErrForbidden)
}

func (s *CVSuite) TestManagerCannotDelete() {
	r := s.create("John", "john@x.com", "Developer")
	before := s.historyCount()

	err := s.svc.Delete(s.ctx, manager, r.ID)
	s.ErrorIs(err, apperr.ErrForbidden)

	_, err = s.svc.Get(s.ctx, admin, r.ID)
	s.NoError(err)
	s.Equal(before, s.historyCount())
	s.Equal(float64(1), testutil.ToFloat64(s.m.Forbidden.WithLabelValues("canDeleteCVs")))
}

func (s *CVSuite) TestFailClosedMatrix() {
	r := s.create("John", "john@x.com", "Developer")
	records, history := s.recordCount(), s.historyCount()

	_, err := s.svc.Create(s.ctx, manager, Input{Name: ptr("A"), Email: ptr("a@x.com"), Position: ptr("B")}, nil)
	s.ErrorIs(err, apperr.ErrForbidden)
	_, err = s.svc.Update(s.ctx, clerk, r.ID, Input{Status: ptr(models.StatusActive)}, nil)
	s.ErrorIs(err, apperr.ErrForbidden)
	_, err = s.svc.Update(s.ctx, manager, r.ID, Input{Status: ptr(models.StatusActive)}, nil)
	s.ErrorIs(err, apperr.ErrForbidden)
	s.ErrorIs(s.svc.Delete(s.ctx, superUser, r.ID), apperr.ErrForbidden)
	s.ErrorIs(s.svc.Delete(s.ctx, clerk, r.ID), apperr.ErrForbidden)
	_, err = s.svc.List(s.ctx, clerk, Filter{})
	s.ErrorIs(err, apperr.ErrForbidden)
	_, err = s.svc.Get(s.ctx, rbac.Actor{Username: "ghost", Role: "intern"}, r.ID)
	s.ErrorIs(err, apperr.ErrForbidden)

	s.Equal(records, s.recordCount())
	s.Equal(history, s.historyCount())

	got, err := s.svc.Get(s.ctx, admin, r.ID)
	s.Require().NoError(err)
	s.Equal(models.StatusPending, got.Status)
}

func (s *CVSuite) TestUpdate_StatusOnly() {
	r := s.create("John", "john@x.com", "Developer")

	got, err := s.svc.Update(s.ctx, admin, r.ID, Input{Status: ptr(models.StatusActive)}, nil)
	s.Require().NoError(err)
	s.Equal(models.StatusActive, got.Status)
	s.Equal("John", got.Name)

	entries, err := s.rec.ForRecord(s.ctx, admin, audit.TableCVRecords, r.ID)
	s.Require().NoError(err)
	s.Require().Len(entries, 2)
	upd := entries[0]
	s.Equal(models.ActionUpdate, upd.Action)
	s.Equal([]string{"status"}, []string(upd.ChangedFields))
	s.Equal("pending", upd.OldValues["status"])
	s.Equal("active", upd.NewValues["status"])
}

func (s *CVSuite) TestUpdate_UnchangedValuesAreNotListed() {
	r := s.create("John", "john@x.com", "Developer")

	_, err := s.svc.Update(s.ctx, superUser, r.ID, Input{Name: ptr("John"), Department: ptr("SAP"), Experience: ptr(0)}, nil)
	s.Require().NoError(err)

	entries, err := s.rec.ForRecord(s.ctx, admin, audit.TableCVRecords, r.ID)
	s.Require().NoError(err)
	s.Equal([]string{"department"}, []string(entries[0].ChangedFields))
}

func (s *CVSuite) TestUpdate_NotFoundAndValidation() {
	_, err := s.svc.Update(s.ctx, admin, 404, Input{Status: ptr(models.StatusActive)}, nil)
	s.ErrorIs(err, apperr.ErrNotFound)

	r := s.create("John", "john@x.com", "Developer")
	_, err = s.svc.Update(s.ctx, admin, r.ID, Input{Email: ptr("nope"), Status: ptr(models.CVStatus("deleted"))}, nil)
	var ve *apperr.ValidationError
	s.Require().ErrorAs(err, &ve)
	s.Contains(ve.Fields, "email")
	s.Contains(ve.Fields, "status")
	s.Equal(int64(1), s.historyCount())
}

func (s *CVSuite) TestDelete_KeepsHistory() {
	r := s.create("John", "john@x.com", "Developer")
	s.Require().NoError(s.svc.Delete(s.ctx, admin, r.ID))

	_, err := s.svc.Get(s.ctx, admin, r.ID)
	s.ErrorIs(err, apperr.ErrNotFound)
	s.ErrorIs(s.svc.Delete(s.ctx, admin, r.ID), apperr.ErrNotFound)

	entries, err := s.rec.ForRecord(s.ctx, admin, audit.TableCVRecords, r.ID)
	s.Require().NoError(err)
	s.Require().Len(entries, 2)
	s.Equal(models.ActionDelete, entries[0].Action)
	s.Equal("John", entries[0].OldValues["name"])
	s.Nil(entries[0].NewValues)
}

func (s *CVSuite) TestAuditCompleteness() {
	a := s.create("A", "a@x.com", "Dev")
	b := s.create("B", "b@x.com", "Dev")
	_, err := s.svc.Update(s.ctx, admin, a.ID, Input{Skills: ptr("Go")}, nil)
	s.Require().NoError(err)
	_, err = s.svc.Update(s.ctx, admin, b.ID, Input{Phone: ptr("555")}, nil)
	s.Require().NoError(err)
	s.Require().NoError(s.svc.Delete(s.ctx, admin, a.ID))

	s.Equal(int64(5), s.historyCount())
	type key struct {
		id     uint
		action models.HistoryAction
	}
	counts := map[key]int{}
	var all []models.VersionHistoryEntry
	s.Require().NoError(s.p.DB(s.ctx).Find(&all).Error)
	for _, e := range all {
		s.Equal(audit.TableCVRecords, e.Table)
		counts[key{e.RecordID, e.Action}]++
	}
	s.Equal(map[key]int{
		{a.ID, models.ActionCreate}: 1,
		{b.ID, models.ActionCreate}: 1,
		{a.ID, models.ActionUpdate}: 1,
		{b.ID, models.ActionUpdate}: 1,
		{a.ID, models.ActionDelete}: 1,
	}, counts)
}

func (s *CVSuite) TestAuditFailureRollsBack() {
	r := s.create("John", "john@x.com", "Developer")
	s.Require().NoError(s.p.DB(s.ctx).Migrator().DropTable(&models.VersionHistoryEntry{}))

	_, err := s.svc.Update(s.ctx, admin, r.ID, Input{Status: ptr(models.StatusArchived)}, nil)
	var awe *apperr.AuditWriteError
	s.Require().ErrorAs(err, &awe)

	got, err := s.svc.Get(s.ctx, admin, r.ID)
	s.Require().NoError(err)
	s.Equal(models.StatusPending, got.Status)

	_, err = s.svc.Create(s.ctx, admin, Input{Name: ptr("X"), Email: ptr("x@x.com"), Position: ptr("Y")}, nil)
	s.Require().ErrorAs(err, &awe)
	s.Equal(int64(1), s.recordCount())
}

func (s *CVSuite) TestList_OrderAndFilters() {
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	seed := []models.CVRecord{
		{Name: "Alice", Surname: "Smith", Email: "alice@x.com", Position: "Developer", Department: "Software Development", Status: models.StatusActive, SubmittedAt: base},
		{Name: "Bob", Surname: "Jones", Email: "bob@x.com", Position: "Analyst", Department: "SAP", Status: models.StatusPending, SubmittedAt: base.Add(2 * time.Hour)},
		{Name: "Carol", Surname: "Brown", Email: "carol@sap.io", Position: "Architect", Department: "Infrastructure", Status: models.StatusArchived, SubmittedAt: base.Add(time.Hour)},
	}
	for i := range seed {
		s.Require().NoError(s.p.DB(s.ctx).Create(&seed[i]).Error)
	}

	all, err := s.svc.List(s.ctx, manager, Filter{})
	s.Require().NoError(err)
	s.Equal([]string{"Bob", "Carol", "Alice"}, names(all))

	got, err := s.svc.List(s.ctx, manager, Filter{Search: "SAP"})
	s.Require().NoError(err)
	s.Equal([]string{"Bob", "Carol"}, names(got))

	got, err = s.svc.List(s.ctx, manager, Filter{Search: "smi"})
	s.Require().NoError(err)
	s.Equal([]string{"Alice"}, names(got))

	got, err = s.svc.List(s.ctx, manager, Filter{Search: "sap", Status: "archived"})
	s.Require().NoError(err)
	s.Equal([]string{"Carol"}, names(got))

	got, err = s.svc.List(s.ctx, manager, Filter{Search: "nobody"})
	s.Require().NoError(err)
	s.NotNil(got)
	s.Empty(got)

	_, err = s.svc.List(s.ctx, manager, Filter{Status: "deleted"})
	var ve *apperr.ValidationError
	s.ErrorAs(err, &ve)
}

func (s *CVSuite) TestList_SearchMatchesWildcardsLiterally() {
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	seed := []models.CVRecord{
		{Name: "Alice", Email: "alice@x.com", Position: "Developer", Status: models.StatusActive, SubmittedAt: base},
		{Name: "Bob", Email: "bob@x.com", Position: "Analyst", Status: models.StatusActive, SubmittedAt: base.Add(time.Hour)},
		{Name: "Dee", Email: "d_ee@x.com", Position: "100% remote", Status: models.StatusActive, SubmittedAt: base.Add(2 * time.Hour)},
	}
	for i := range seed {
		s.Require().NoError(s.p.DB(s.ctx).Create(&seed[i]).Error)
	}

	cases := []struct {
		term string
		want []string
	}{
		{"_", []string{"Dee"}},
		{"%", []string{"Dee"}},
		{"a_i", []string{}},
		{`\`, []string{}},
		{"D_EE", []string{"Dee"}},
	}
	for _, tc := range cases {
		got, err := s.svc.List(s.ctx, manager, Filter{Search: tc.term})
		s.Require().NoError(err)
		s.Equalf(tc.want, names(got), "search %q", tc.term)
	}
}

func names(rs []models.CVRecord) []string {
	out := make([]string, len(rs))
	for i, r := range rs {
		out[i] = r.Name
	}
	return out
}

func (s *CVSuite) TestFileLifecycle() {
	r, err := s.svc.Create(s.ctx, clerk, Input{Name: ptr("John"), Email: ptr("john@x.com"), Position: ptr("Dev")},
		&Upload{Name: "john.txt", Body: strings.NewReader("first version")})
	s.Require().NoError(err)
	s.Require().NotNil(r.CVFile)
	first := *r.CVFile

	info, err := s.svc.FileInfo(s.ctx, manager, r.ID)
	s.Require().NoError(err)
	s.True(info.Exists)
	s.Equal(int64(len("first version")), info.Size)

	_, err = s.svc.FileInfo(s.ctx, clerk, r.ID)
	s.ErrorIs(err, apperr.ErrForbidden)

	text, err := s.svc.FileText(s.ctx, admin, r.ID)
	s.Require().NoError(err)
	s.Equal("first version", text)

	updated, err := s.svc.Update(s.ctx, admin, r.ID, Input{}, &Upload{Name: "john-v2.txt", Body: strings.NewReader("second")})
	s.Require().NoError(err)
	s.Require().NotNil(updated.CVFile)
	s.NotEqual(first, *updated.CVFile)
	s.NoFileExists(filepath.Join(s.dir, first))

	entries, err := s.rec.ForRecord(s.ctx, admin, audit.TableCVRecords, r.ID)
	s.Require().NoError(err)
	s.Equal([]string{"cvFile"}, []string(entries[0].ChangedFields))

	rc, ref, err := s.svc.OpenFile(s.ctx, admin, r.ID)
	s.Require().NoError(err)
	b, _ := io.ReadAll(rc)
	s.Require().NoError(rc.Close())
	s.Equal("second", string(b))
	s.Equal(*updated.CVFile, ref)

	s.Require().NoError(s.svc.Delete(s.ctx, admin, r.ID))
	s.NoFileExists(filepath.Join(s.dir, ref))
}

func (s *CVSuite) TestFile_RejectedTypeStoresNothing() {
	_, err := s.svc.Create(s.ctx, admin, Input{Name: ptr("John"), Email: ptr("john@x.com"), Position: ptr("Dev")},
		&Upload{Name: "john.exe", Body: strings.NewReader("MZ")})
	var ve *apperr.ValidationError
	s.Require().ErrorAs(err, &ve)
	s.Contains(ve.Fields, "file")
	s.Zero(s.recordCount())
}

func (s *CVSuite) TestFile_MissingIsNotFound() {
	r := s.create("John", "john@x.com", "Developer")
	_, err := s.svc.FileInfo(s.ctx, admin, r.ID)
	s.ErrorIs(err, apperr.ErrNotFound)
	_, _, err = s.svc.OpenFile(s.ctx, admin, r.ID)
	s.ErrorIs(err, apperr.ErrNotFound)
}

func (s *CVSuite) TestDelete_BlobFailureDoesNotFail() {
	r, err := s.svc.Create(s.ctx, admin, Input{Name: ptr("John"), Email: ptr("john@x.com"), Position: ptr("Dev")},
		&Upload{Name: "cv.pdf", Body: strings.NewReader("%PDF-1.4")})
	s.Require().NoError(err)
	_, err = s.blobs.Delete(s.ctx, *r.CVFile)
	s.Require().NoError(err)

	s.NoError(s.svc.Delete(s.ctx, admin, r.ID))
}

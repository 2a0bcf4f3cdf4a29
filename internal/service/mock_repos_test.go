package service

import (
	"context"
	"fmt"
	"sort"
	"time"

	"gorm.io/gorm"

	"github.com/awadhesh95pandey/SurveyManagement-sub000/config"
	"github.com/awadhesh95pandey/SurveyManagement-sub000/internal/model"
	"github.com/awadhesh95pandey/SurveyManagement-sub000/internal/repository"
)

// ── Mock DepartmentRepository ──

type mockDepartmentRepo struct {
	departments    map[string]*model.Department
	employeeCounts map[string]int64
}

func newMockDepartmentRepo() *mockDepartmentRepo {
	return &mockDepartmentRepo{
		departments: map[string]*model.Department{
			"dept-1": {DepartmentID: "dept-1", Name: "研发部", IsActive: true},
		},
		employeeCounts: make(map[string]int64),
	}
}

func (m *mockDepartmentRepo) Create(_ context.Context, dept *model.Department) error {
	for _, d := range m.departments {
		if d.Name == dept.Name {
			return gorm.ErrDuplicatedKey
		}
	}
	if dept.DepartmentID == "" {
		dept.DepartmentID = "dept-" + dept.Name
	}
	m.departments[dept.DepartmentID] = dept
	return nil
}

func (m *mockDepartmentRepo) GetByID(_ context.Context, id string) (*model.Department, error) {
	if d, ok := m.departments[id]; ok {
		return d, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockDepartmentRepo) GetByName(_ context.Context, name string) (*model.Department, error) {
	for _, d := range m.departments {
		if d.Name == name {
			return d, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockDepartmentRepo) List(_ context.Context) ([]model.Department, error) {
	var result []model.Department
	for _, d := range m.departments {
		if d.IsActive {
			result = append(result, *d)
		}
	}
	return result, nil
}

func (m *mockDepartmentRepo) ListAll(_ context.Context) ([]model.Department, error) {
	var result []model.Department
	for _, d := range m.departments {
		result = append(result, *d)
	}
	return result, nil
}

func (m *mockDepartmentRepo) ListByIDs(_ context.Context, ids []string) ([]model.Department, error) {
	var result []model.Department
	for _, id := range ids {
		if d, ok := m.departments[id]; ok {
			result = append(result, *d)
		}
	}
	return result, nil
}

func (m *mockDepartmentRepo) Update(_ context.Context, dept *model.Department) error {
	for id, d := range m.departments {
		if id != dept.DepartmentID && d.Name == dept.Name {
			return gorm.ErrDuplicatedKey
		}
	}
	m.departments[dept.DepartmentID] = dept
	return nil
}

func (m *mockDepartmentRepo) CountEmployees(_ context.Context, departmentID string) (int64, error) {
	return m.employeeCounts[departmentID], nil
}

func (m *mockDepartmentRepo) BatchCountEmployees(_ context.Context, departmentIDs []string) (map[string]int64, error) {
	result := make(map[string]int64, len(departmentIDs))
	for _, id := range departmentIDs {
		result[id] = m.employeeCounts[id]
	}
	return result, nil
}

// ── Mock EmployeeRepository ──

type mockEmployeeRepo struct {
	employees map[string]*model.Employee
}

func newMockEmployeeRepo() *mockEmployeeRepo {
	return &mockEmployeeRepo{employees: make(map[string]*model.Employee)}
}

func (m *mockEmployeeRepo) Create(_ context.Context, emp *model.Employee) error {
	for _, e := range m.employees {
		if e.EmpCode == emp.EmpCode {
			return gorm.ErrDuplicatedKey
		}
	}
	if emp.EmployeeID == "" {
		emp.EmployeeID = "emp-" + emp.EmpCode
	}
	m.employees[emp.EmployeeID] = emp
	return nil
}

func (m *mockEmployeeRepo) Update(_ context.Context, emp *model.Employee) error {
	m.employees[emp.EmployeeID] = emp
	return nil
}

func (m *mockEmployeeRepo) GetByID(_ context.Context, id string) (*model.Employee, error) {
	if e, ok := m.employees[id]; ok {
		return e, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockEmployeeRepo) GetByEmpCode(_ context.Context, empCode string) (*model.Employee, error) {
	for _, e := range m.employees {
		if e.EmpCode == empCode {
			return e, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockEmployeeRepo) ListByIDs(_ context.Context, ids []string) ([]model.Employee, error) {
	var result []model.Employee
	for _, id := range ids {
		if e, ok := m.employees[id]; ok {
			result = append(result, *e)
		}
	}
	return result, nil
}

func (m *mockEmployeeRepo) ListActiveByDepartments(_ context.Context, departmentIDs []string) ([]model.Employee, error) {
	deptSet := make(map[string]bool, len(departmentIDs))
	for _, id := range departmentIDs {
		deptSet[id] = true
	}
	var result []model.Employee
	for _, e := range m.employees {
		if e.IsActive && deptSet[e.DepartmentID] {
			result = append(result, *e)
		}
	}
	sortEmployees(result)
	return result, nil
}

func (m *mockEmployeeRepo) ListReportsOf(_ context.Context, managerIDs []string) ([]model.Employee, error) {
	mgrSet := make(map[string]bool, len(managerIDs))
	for _, id := range managerIDs {
		mgrSet[id] = true
	}
	var result []model.Employee
	for _, e := range m.employees {
		if e.ManagerID != nil && mgrSet[*e.ManagerID] {
			result = append(result, *e)
		}
	}
	sortEmployees(result)
	return result, nil
}

func (m *mockEmployeeRepo) ListWithFilters(_ context.Context, departmentID string, offset, limit int) ([]model.Employee, int64, error) {
	var all []model.Employee
	for _, e := range m.employees {
		if departmentID != "" && e.DepartmentID != departmentID {
			continue
		}
		all = append(all, *e)
	}
	sortEmployees(all)
	total := int64(len(all))
	if offset >= len(all) {
		return nil, total, nil
	}
	end := offset + limit
	if end > len(all) {
		end = len(all)
	}
	return all[offset:end], total, nil
}

func sortEmployees(list []model.Employee) {
	sort.Slice(list, func(i, j int) bool { return list[i].EmployeeID < list[j].EmployeeID })
}

// ── Mock SurveyRepository ──

type mockSurveyRepo struct {
	surveys map[string]*model.Survey
	nextID  int
}

func newMockSurveyRepo() *mockSurveyRepo {
	return &mockSurveyRepo{surveys: make(map[string]*model.Survey)}
}

func (m *mockSurveyRepo) Create(_ context.Context, survey *model.Survey) error {
	if survey.SurveyID == "" {
		m.nextID++
		survey.SurveyID = fmt.Sprintf("survey-%d", m.nextID)
	}
	m.surveys[survey.SurveyID] = survey
	return nil
}

func (m *mockSurveyRepo) GetByID(_ context.Context, id string) (*model.Survey, error) {
	if s, ok := m.surveys[id]; ok {
		return s, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockSurveyRepo) List(_ context.Context) ([]model.Survey, error) {
	var result []model.Survey
	for _, s := range m.surveys {
		result = append(result, *s)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].SurveyID < result[j].SurveyID })
	return result, nil
}

func (m *mockSurveyRepo) Update(_ context.Context, survey *model.Survey) error {
	if _, ok := m.surveys[survey.SurveyID]; !ok {
		return gorm.ErrRecordNotFound
	}
	m.surveys[survey.SurveyID] = survey
	return nil
}

// UpdateStatus 模拟条件更新：from 不匹配时影响行数为 0
func (m *mockSurveyRepo) UpdateStatus(_ context.Context, id string, from, to model.SurveyPhase) (int64, error) {
	s, ok := m.surveys[id]
	if !ok || s.Status != from {
		return 0, nil
	}
	s.Status = to
	return 1, nil
}

func (m *mockSurveyRepo) Archive(_ context.Context, id string, at time.Time, archivedBy string) error {
	s, ok := m.surveys[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	s.Status = model.PhaseArchived
	s.ArchivedAt = &at
	s.UpdatedBy = &archivedBy
	return nil
}

func (m *mockSurveyRepo) Delete(_ context.Context, id string, deletedBy string) error {
	if _, ok := m.surveys[id]; !ok {
		return gorm.ErrRecordNotFound
	}
	delete(m.surveys, id)
	return nil
}

// ── Mock QuestionRepository ──

type mockQuestionRepo struct {
	questions map[string]*model.Question
	nextID    int
}

func newMockQuestionRepo() *mockQuestionRepo {
	return &mockQuestionRepo{questions: make(map[string]*model.Question)}
}

func (m *mockQuestionRepo) CreateBatch(_ context.Context, questions []*model.Question) error {
	for _, q := range questions {
		if q.QuestionID == "" {
			m.nextID++
			q.QuestionID = fmt.Sprintf("q-%d", m.nextID)
		}
		m.questions[q.QuestionID] = q
	}
	return nil
}

func (m *mockQuestionRepo) GetByID(_ context.Context, id string) (*model.Question, error) {
	if q, ok := m.questions[id]; ok {
		return q, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockQuestionRepo) ListBySurvey(_ context.Context, surveyID string) ([]model.Question, error) {
	var result []model.Question
	for _, q := range m.questions {
		if q.SurveyID == surveyID {
			result = append(result, *q)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].SortOrder < result[j].SortOrder })
	return result, nil
}

func (m *mockQuestionRepo) ListBySurveyAndParameter(_ context.Context, surveyID, parameter string) ([]model.Question, error) {
	var result []model.Question
	for _, q := range m.questions {
		if q.SurveyID == surveyID && q.Parameter != nil && *q.Parameter == parameter {
			result = append(result, *q)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].SortOrder < result[j].SortOrder })
	return result, nil
}

func (m *mockQuestionRepo) CountBySurvey(_ context.Context, surveyID string) (int64, error) {
	var count int64
	for _, q := range m.questions {
		if q.SurveyID == surveyID {
			count++
		}
	}
	return count, nil
}

// ── Mock ConsentRecordRepository ──

type mockConsentRepo struct {
	records map[string]*model.ConsentRecord // key: ConsentID
	nextID  int

	// surveys/employees 用于模拟 GetByToken 的 Preload
	surveys   *mockSurveyRepo
	employees *mockEmployeeRepo
}

func newMockConsentRepo(surveys *mockSurveyRepo, employees *mockEmployeeRepo) *mockConsentRepo {
	return &mockConsentRepo{
		records:   make(map[string]*model.ConsentRecord),
		surveys:   surveys,
		employees: employees,
	}
}

func (m *mockConsentRepo) Create(_ context.Context, record *model.ConsentRecord) error {
	for _, r := range m.records {
		if r.SurveyID == record.SurveyID && r.EmployeeID == record.EmployeeID {
			return gorm.ErrDuplicatedKey
		}
		if r.Token == record.Token {
			return gorm.ErrDuplicatedKey
		}
	}
	if record.ConsentID == "" {
		m.nextID++
		record.ConsentID = fmt.Sprintf("consent-%d", m.nextID)
	}
	m.records[record.ConsentID] = record
	return nil
}

func (m *mockConsentRepo) GetByToken(_ context.Context, token string) (*model.ConsentRecord, error) {
	for _, r := range m.records {
		if r.Token == token {
			cp := *r
			if m.surveys != nil {
				cp.Survey = m.surveys.surveys[r.SurveyID]
			}
			if m.employees != nil {
				cp.Employee = m.employees.employees[r.EmployeeID]
			}
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockConsentRepo) GetBySurveyAndEmployee(_ context.Context, surveyID, employeeID string) (*model.ConsentRecord, error) {
	for _, r := range m.records {
		if r.SurveyID == surveyID && r.EmployeeID == employeeID {
			return r, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

// Decide 模拟 write-once 条件更新：decision 已非 pending 时影响行数为 0
func (m *mockConsentRepo) Decide(_ context.Context, token string, decision model.ConsentDecision, at time.Time) (int64, error) {
	for _, r := range m.records {
		if r.Token == token {
			if r.Decision != model.ConsentPending {
				return 0, nil
			}
			r.Decision = decision
			r.DecidedAt = &at
			return 1, nil
		}
	}
	return 0, nil
}

func (m *mockConsentRepo) CountByDecision(_ context.Context, surveyID string) (map[model.ConsentDecision]int64, error) {
	result := make(map[model.ConsentDecision]int64)
	for _, r := range m.records {
		if r.SurveyID == surveyID {
			result[r.Decision]++
		}
	}
	return result, nil
}

func (m *mockConsentRepo) ListBySurvey(_ context.Context, surveyID string) ([]model.ConsentRecord, error) {
	var result []model.ConsentRecord
	for _, r := range m.records {
		if r.SurveyID == surveyID {
			result = append(result, *r)
		}
	}
	return result, nil
}

// ── Mock AccessTokenRepository ──

type mockAccessTokenRepo struct {
	tokens  map[string]*model.AccessToken // key: AccessTokenID
	nextID  int
	surveys *mockSurveyRepo
}

func newMockAccessTokenRepo(surveys *mockSurveyRepo) *mockAccessTokenRepo {
	return &mockAccessTokenRepo{
		tokens:  make(map[string]*model.AccessToken),
		surveys: surveys,
	}
}

func (m *mockAccessTokenRepo) Create(_ context.Context, token *model.AccessToken) error {
	for _, t := range m.tokens {
		if t.Token == token.Token {
			return gorm.ErrDuplicatedKey
		}
	}
	if token.AccessTokenID == "" {
		m.nextID++
		token.AccessTokenID = fmt.Sprintf("at-%d", m.nextID)
	}
	m.tokens[token.AccessTokenID] = token
	return nil
}

func (m *mockAccessTokenRepo) GetByToken(_ context.Context, token string) (*model.AccessToken, error) {
	for _, t := range m.tokens {
		if t.Token == token {
			cp := *t
			if m.surveys != nil {
				cp.Survey = m.surveys.surveys[t.SurveyID]
			}
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

// Redeem 模拟条件更新：status 非 issued 时影响行数为 0
func (m *mockAccessTokenRepo) Redeem(_ context.Context, token string, at time.Time) (int64, error) {
	for _, t := range m.tokens {
		if t.Token == token {
			if t.Status != model.TokenIssued {
				return 0, nil
			}
			t.Status = model.TokenRedeemed
			t.RedeemedAt = &at
			return 1, nil
		}
	}
	return 0, nil
}

func (m *mockAccessTokenRepo) MarkExpired(_ context.Context, tokenID string) error {
	if t, ok := m.tokens[tokenID]; ok {
		t.Status = model.TokenExpired
	}
	return nil
}

// ── Mock SubmissionRepository ──

type mockSubmissionRepo struct {
	submissions map[string]*model.SurveySubmission
	nextID      int
	failCreate  error // 注入 Create 错误
}

func newMockSubmissionRepo() *mockSubmissionRepo {
	return &mockSubmissionRepo{submissions: make(map[string]*model.SurveySubmission)}
}

func (m *mockSubmissionRepo) Create(_ context.Context, sub *model.SurveySubmission) error {
	if m.failCreate != nil {
		return m.failCreate
	}
	for _, s := range m.submissions {
		if s.SurveyID == sub.SurveyID && s.EmployeeID != nil && sub.EmployeeID != nil && *s.EmployeeID == *sub.EmployeeID {
			return gorm.ErrDuplicatedKey
		}
		if s.AccessTokenID == sub.AccessTokenID {
			return gorm.ErrDuplicatedKey
		}
	}
	if sub.SubmissionID == "" {
		m.nextID++
		sub.SubmissionID = fmt.Sprintf("sub-%d", m.nextID)
	}
	m.submissions[sub.SubmissionID] = sub
	return nil
}

func (m *mockSubmissionRepo) GetByID(_ context.Context, id string) (*model.SurveySubmission, error) {
	if s, ok := m.submissions[id]; ok {
		return s, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockSubmissionRepo) ExistsBySurveyAndEmployee(_ context.Context, surveyID, employeeID string) (bool, error) {
	for _, s := range m.submissions {
		if s.SurveyID == surveyID && s.EmployeeID != nil && *s.EmployeeID == employeeID {
			return true, nil
		}
	}
	return false, nil
}

func (m *mockSubmissionRepo) ListBySurvey(_ context.Context, surveyID string, offset, limit int) ([]model.SurveySubmission, int64, error) {
	var all []model.SurveySubmission
	for _, s := range m.submissions {
		if s.SurveyID == surveyID {
			all = append(all, *s)
		}
	}
	sort.Slice(all, func(i, j int) bool { return all[i].SubmissionID < all[j].SubmissionID })
	total := int64(len(all))
	if offset >= len(all) {
		return nil, total, nil
	}
	end := offset + limit
	if end > len(all) {
		end = len(all)
	}
	return all[offset:end], total, nil
}

func (m *mockSubmissionRepo) CountBySurvey(_ context.Context, surveyID string) (int64, error) {
	var count int64
	for _, s := range m.submissions {
		if s.SurveyID == surveyID {
			count++
		}
	}
	return count, nil
}

// ── Mock ResponseRepository ──

type mockResponseRepo struct {
	responses  []model.Response
	nextID     int
	failCreate error // 注入 CreateBatch 错误
}

func newMockResponseRepo() *mockResponseRepo {
	return &mockResponseRepo{}
}

func (m *mockResponseRepo) CreateBatch(_ context.Context, responses []*model.Response) error {
	if m.failCreate != nil {
		return m.failCreate
	}
	for _, r := range responses {
		if r.ResponseID == "" {
			m.nextID++
			r.ResponseID = fmt.Sprintf("resp-%d", m.nextID)
		}
		m.responses = append(m.responses, *r)
	}
	return nil
}

func (m *mockResponseRepo) CountByOption(_ context.Context, surveyID, questionID string) ([]repository.OptionCountRow, error) {
	return m.count(surveyID, map[string]bool{questionID: true}), nil
}

func (m *mockResponseRepo) CountByOptions(_ context.Context, surveyID string, questionIDs []string) ([]repository.OptionCountRow, error) {
	qSet := make(map[string]bool, len(questionIDs))
	for _, id := range questionIDs {
		qSet[id] = true
	}
	return m.count(surveyID, qSet), nil
}

func (m *mockResponseRepo) count(surveyID string, questionIDs map[string]bool) []repository.OptionCountRow {
	type key struct {
		q   string
		opt int
	}
	counts := make(map[key]int64)
	for _, r := range m.responses {
		if r.SurveyID == surveyID && questionIDs[r.QuestionID] {
			counts[key{r.QuestionID, r.OptionIndex}]++
		}
	}
	var rows []repository.OptionCountRow
	for k, cnt := range counts {
		rows = append(rows, repository.OptionCountRow{QuestionID: k.q, OptionIndex: k.opt, Cnt: cnt})
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].QuestionID != rows[j].QuestionID {
			return rows[i].QuestionID < rows[j].QuestionID
		}
		return rows[i].OptionIndex < rows[j].OptionIndex
	})
	return rows
}

func (m *mockResponseRepo) ListBySubmissions(_ context.Context, submissionIDs []string) ([]model.Response, error) {
	subSet := make(map[string]bool, len(submissionIDs))
	for _, id := range submissionIDs {
		subSet[id] = true
	}
	var result []model.Response
	for _, r := range m.responses {
		if subSet[r.SubmissionID] {
			result = append(result, r)
		}
	}
	return result, nil
}

func (m *mockResponseRepo) CountBySubmission(_ context.Context, submissionID string) (int64, error) {
	var count int64
	for _, r := range m.responses {
		if r.SubmissionID == submissionID {
			count++
		}
	}
	return count, nil
}

// ── 聚合构建 ──

// mockRepoSet 持有全部 mock，便于测试中直接操作内部状态
type mockRepoSet struct {
	dept       *mockDepartmentRepo
	employee   *mockEmployeeRepo
	survey     *mockSurveyRepo
	question   *mockQuestionRepo
	consent    *mockConsentRepo
	token      *mockAccessTokenRepo
	submission *mockSubmissionRepo
	response   *mockResponseRepo
}

func newMockRepoSet() (*repository.Repository, *mockRepoSet) {
	set := &mockRepoSet{
		dept:       newMockDepartmentRepo(),
		employee:   newMockEmployeeRepo(),
		survey:     newMockSurveyRepo(),
		question:   newMockQuestionRepo(),
		submission: newMockSubmissionRepo(),
		response:   newMockResponseRepo(),
	}
	set.consent = newMockConsentRepo(set.survey, set.employee)
	set.token = newMockAccessTokenRepo(set.survey)

	repo := &repository.Repository{
		Department:  set.dept,
		Employee:    set.employee,
		Survey:      set.survey,
		Question:    set.question,
		Consent:     set.consent,
		AccessToken: set.token,
		Submission:  set.submission,
		Response:    set.response,
	}
	return repo, set
}

// ── 共享测试夹具 ──

// testNow 固定测试时钟
var testNow = time.Date(2026, 6, 15, 12, 0, 0, 0, time.UTC)

func testConfig() *config.Config {
	return &config.Config{
		Survey: config.SurveyConfig{
			ConsentLinkBase: "https://survey.example.com/consent",
			AccessLinkBase:  "https://survey.example.com/s",
			ExpandCacheTTL:  5 * time.Minute,
			DefaultPageSize: 20,
			MaxPageSize:     100,
		},
	}
}

// seedSurvey 注入一张问卷；status 决定推导的起点相位
func seedSurvey(set *mockRepoSet, id string, status model.SurveyPhase, publishAt time.Time, durationDays int) *model.Survey {
	survey := &model.Survey{
		SurveyID:        id,
		Name:            "员工敬业度调研",
		PublishAt:       publishAt,
		DurationDays:    durationDays,
		TargetType:      model.TargetDepartment,
		Status:          status,
		ConsentDeadline: publishAt,
	}
	deptID := "dept-1"
	survey.TargetDepartmentID = &deptID
	set.survey.surveys[id] = survey
	return survey
}

// seedEmployee 注入一名员工
func seedEmployee(set *mockRepoSet, id, deptID string, managerID *string) *model.Employee {
	emp := &model.Employee{
		EmployeeID:   id,
		Name:         "员工" + id,
		EmpCode:      "EMP-" + id,
		Email:        id + "@example.com",
		DepartmentID: deptID,
		ManagerID:    managerID,
		IsActive:     true,
	}
	set.employee.employees[id] = emp
	return emp
}

// seedQuestion 注入一道题目
func seedQuestion(set *mockRepoSet, id, surveyID string, sortOrder int, options []string, parameter *string) *model.Question {
	q := &model.Question{
		QuestionID: id,
		SurveyID:   surveyID,
		Text:       "题目" + id,
		SortOrder:  sortOrder,
		Options:    options,
		Parameter:  parameter,
	}
	set.question.questions[id] = q
	return q
}

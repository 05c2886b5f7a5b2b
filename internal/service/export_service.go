package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	ics "github.com/arran4/golang-ical"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"sgte/backend/internal/model"
	"sgte/backend/internal/repository"
)

// ── 导出模块业务错误 ──

var (
	ErrExportNoData       = errors.New("暂无可导出的项目")
	ErrExportNoMilestones = errors.New("该项目暂无带日期的里程碑")
	ErrExportNoAuditLogs  = errors.New("操作日志为空")
	ErrExportGenerateFail = errors.New("生成导出文件失败")
)

// ExportService 导出业务接口
//
// 设计说明：
//   - 卷宗总表导出为 Excel (.xlsx)，列名沿用学院历史表格的格式
//   - 里程碑导出为 iCalendar (.ics)，供导师导入日历
//   - 导出以 bytes.Buffer 返回，由 Handler 层设置 HTTP 响应头后写入 Response
type ExportService interface {
	// ExportExpedientes 导出全部项目与卷宗为 Excel，每名作者一行
	ExportExpedientes(ctx context.Context, actor string) (*bytes.Buffer, string, error)
	// ExportMilestonesICS 导出项目中带日期的里程碑为全天事件
	ExportMilestonesICS(ctx context.Context, projectID uint) (*bytes.Buffer, string, error)
	// ExportAuditLog 导出最近 limit 条操作日志为 Excel，最新的在前
	ExportAuditLog(ctx context.Context, limit int, actor string) (*bytes.Buffer, string, error)
}

type exportService struct {
	repo   *repository.Repository
	audit  AuditService
	logger *zap.Logger
	now    func() time.Time
}

// NewExportService 创建 ExportService 实例
func NewExportService(repo *repository.Repository, audit AuditService, logger *zap.Logger) ExportService {
	return &exportService{repo: repo, audit: audit, logger: logger, now: time.Now}
}

// expedienteColumns 卷宗总表列头及列宽
var expedienteColumns = []struct {
	title string
	width float64
}{
	{"R.U.N", 14},
	{"NOMBRES", 22},
	{"APELLIDOS", 22},
	{"CARRERA", 28},
	{"SEMESTRE", 10},
	{"MODALIDAD", 20},
	{"TITULO PROYECTO", 50},
	{"PROFESOR GUIA", 24},
	{"CORRECTOR 1", 24},
	{"CORRECTOR 2", 24},
	{"ESTADO", 16},
	{"OBSERVACIONES", 40},
	{"TITULADO", 10},
	{"FECHA ENVIO", 12},
}

// ═══════════════════════════════════════════════════════════
// ExportExpedientes — 导出卷宗总表为 Excel
// ═══════════════════════════════════════════════════════════
//
// 输出格式：
//   - Sheet "Reporte Maestro"
//   - 第 1 行为表头，之后每名作者一行（双人项目占两行）
//   - 无卷宗的项目 ESTADO 填 sin_expediente
//
// 返回值：buf（Excel 内容）, filename（建议文件名）, error

func (s *exportService) ExportExpedientes(ctx context.Context, actor string) (*bytes.Buffer, string, error) {
	// 1. 查询全部项目（含作者、委员会、卷宗）
	var projects []model.Project
	err := s.repo.Transaction(ctx, func(tx *repository.Repository) error {
		var err error
		projects, err = tx.Project.ListDetailed(ctx)
		return err
	})
	if err != nil {
		s.logger.Error("查询导出数据失败", zap.Error(err))
		return nil, "", err
	}
	if len(projects) == 0 {
		return nil, "", ErrExportNoData
	}

	// 2. 生成 Excel
	f := excelize.NewFile()
	defer f.Close()

	sheetName := "Reporte Maestro"
	idx, _ := f.NewSheet(sheetName)
	f.SetActiveSheet(idx)
	// 删除默认 Sheet1
	f.DeleteSheet("Sheet1")

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 11, Color: "#FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#4472C4"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})

	// 表头
	for i, c := range expedienteColumns {
		col := colName(i)
		f.SetColWidth(sheetName, col, col, c.width)
		f.SetCellValue(sheetName, cell(col, 1), c.title)
	}
	f.SetCellStyle(sheetName, "A1", cell(colName(len(expedienteColumns)-1), 1), headerStyle)
	f.SetPanes(sheetName, &excelize.Panes{Freeze: true, YSplit: 1, TopLeftCell: "A2", ActivePane: "bottomLeft"})

	// 数据行
	row := 2
	for i := range projects {
		p := &projects[i]
		for _, author := range []*model.Student{p.Author1, p.Author2} {
			if author == nil {
				continue
			}
			for c, v := range expedienteRow(p, author) {
				f.SetCellValue(sheetName, cell(colName(c), row), v)
			}
			row++
		}
	}
	rows := row - 2

	// 3. 写入 buffer
	buf := new(bytes.Buffer)
	if err := f.Write(buf); err != nil {
		s.logger.Error("写入 Excel 失败", zap.Error(err))
		return nil, "", ErrExportGenerateFail
	}

	filename := fmt.Sprintf("Reporte_Maestro_SGTE_%s.xlsx", s.now().Format("20060102_150405"))

	s.audit.Record(ctx, AuditEntry{
		Table:       "exports",
		RecordID:    "reporte_maestro",
		Action:      model.AuditExport,
		User:        actor,
		Description: fmt.Sprintf("导出卷宗总表：%d 行", rows),
	})
	s.logger.Info("卷宗总表已导出", zap.String("filename", filename), zap.Int("rows", rows))

	return buf, filename, nil
}

// expedienteRow 按列头顺序生成一行
func expedienteRow(p *model.Project, author *model.Student) []string {
	var advisor, reviewer1, reviewer2 string
	if p.Committee != nil {
		advisor, reviewer1, reviewer2 = p.Committee.Advisor, p.Committee.Reviewer1, p.Committee.Reviewer2
	}

	status, notes, graduated, sent := "sin_expediente", "", "NO", ""
	if e := p.Expediente; e != nil {
		status = e.Status.String()
		notes = e.Notes
		if e.Graduated {
			graduated = "SI"
		}
		if e.SentAt != nil {
			sent = e.SentAt.Format("02/01/2006")
		}
	}

	return []string{
		author.RUN,
		author.GivenNames,
		author.FamilyNames,
		author.Program,
		p.Term,
		p.Modality.Label(),
		p.Title,
		advisor,
		reviewer1,
		reviewer2,
		status,
		notes,
		graduated,
		sent,
	}
}

// ═══════════════════════════════════════════════════════════
// ExportAuditLog — 导出操作日志为 Excel
// ═══════════════════════════════════════════════════════════

// 操作日志导出条数
const (
	defaultAuditExportLimit = 1000
	maxAuditExportLimit     = 10000
)

var auditColumns = []struct {
	title string
	width float64
}{
	{"FECHA", 20},
	{"TABLA", 16},
	{"REGISTRO", 14},
	{"ACCION", 12},
	{"USUARIO", 18},
	{"DESCRIPCION", 60},
}

func (s *exportService) ExportAuditLog(ctx context.Context, limit int, actor string) (*bytes.Buffer, string, error) {
	if limit <= 0 {
		limit = defaultAuditExportLimit
	}
	if limit > maxAuditExportLimit {
		limit = maxAuditExportLimit
	}

	var entries []model.AuditLog
	err := s.repo.Transaction(ctx, func(tx *repository.Repository) error {
		var err error
		entries, _, err = tx.AuditLog.List(ctx, repository.AuditLogFilter{}, 0, limit)
		return err
	})
	if err != nil {
		s.logger.Error("查询操作日志失败", zap.Error(err))
		return nil, "", err
	}
	if len(entries) == 0 {
		return nil, "", ErrExportNoAuditLogs
	}

	f := excelize.NewFile()
	defer f.Close()

	sheetName := "Bitacora"
	idx, _ := f.NewSheet(sheetName)
	f.SetActiveSheet(idx)
	f.DeleteSheet("Sheet1")

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 11, Color: "#FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#4472C4"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})

	for i, c := range auditColumns {
		col := colName(i)
		f.SetColWidth(sheetName, col, col, c.width)
		f.SetCellValue(sheetName, cell(col, 1), c.title)
	}
	f.SetCellStyle(sheetName, "A1", cell(colName(len(auditColumns)-1), 1), headerStyle)
	f.SetPanes(sheetName, &excelize.Panes{Freeze: true, YSplit: 1, TopLeftCell: "A2", ActivePane: "bottomLeft"})

	for i := range entries {
		e := &entries[i]
		values := []string{
			e.Timestamp.Format("02/01/2006 15:04:05"),
			e.Table,
			e.RecordID,
			e.Action,
			e.User,
			e.Description,
		}
		for c, v := range values {
			f.SetCellValue(sheetName, cell(colName(c), i+2), v)
		}
	}

	buf := new(bytes.Buffer)
	if err := f.Write(buf); err != nil {
		s.logger.Error("写入 Excel 失败", zap.Error(err))
		return nil, "", ErrExportGenerateFail
	}

	filename := fmt.Sprintf("Bitacora_%s.xlsx", s.now().Format("20060102"))

	// 导出本身也记入日志，但不出现在本次文件中
	s.audit.Record(ctx, AuditEntry{
		Table:       "exports",
		RecordID:    "bitacora",
		Action:      model.AuditExport,
		User:        actor,
		Description: fmt.Sprintf("导出操作日志：%d 行", len(entries)),
	})
	s.logger.Info("操作日志已导出", zap.String("filename", filename), zap.Int("rows", len(entries)))

	return buf, filename, nil
}

// ═══════════════════════════════════════════════════════════
// ExportMilestonesICS — 导出里程碑为 iCalendar
// ═══════════════════════════════════════════════════════════

func (s *exportService) ExportMilestonesICS(ctx context.Context, projectID uint) (*bytes.Buffer, string, error) {
	var project *model.Project
	err := s.repo.Transaction(ctx, func(tx *repository.Repository) error {
		var err error
		project, err = tx.Project.GetDetail(ctx, projectID)
		return notFound(err, ErrProjectNotFound)
	})
	if err != nil {
		return nil, "", err
	}

	cal := ics.NewCalendar()
	cal.SetMethod(ics.MethodPublish)
	cal.SetProductId("-//SGTE//Hitos de titulacion//ES")
	cal.SetXWRCalName(calendarName(project))

	stamp := s.now().UTC()
	count := 0
	for _, m := range project.Milestones {
		if m.Date == nil {
			continue
		}
		event := cal.AddEvent(fmt.Sprintf("hito-%d-proyecto-%d@sgte", m.ID, project.ID))
		event.SetDtStampTime(stamp)
		event.SetAllDayStartAt(*m.Date)
		event.SetAllDayEndAt(m.Date.AddDate(0, 0, 1))
		event.SetSummary(m.Type.Label())
		if desc := milestoneDescription(project, &m); desc != "" {
			event.SetDescription(desc)
		}
		count++
	}
	if count == 0 {
		return nil, "", ErrExportNoMilestones
	}

	buf := bytes.NewBufferString(cal.Serialize())
	filename := "hitos_proyecto_" + strconv.FormatUint(uint64(project.ID), 10) + ".ics"
	s.logger.Info("里程碑日历已导出", zap.Uint("project_id", projectID), zap.Int("events", count))
	return buf, filename, nil
}

func calendarName(p *model.Project) string {
	if p.Title != "" {
		return p.Title
	}
	return "Proyecto " + strconv.FormatUint(uint64(p.ID), 10)
}

func milestoneDescription(p *model.Project, m *model.Milestone) string {
	var parts []string
	if p.Title != "" {
		parts = append(parts, p.Title)
	}
	if m.Completed {
		parts = append(parts, "Completado")
	}
	if m.Notes != "" {
		parts = append(parts, m.Notes)
	}
	return strings.Join(parts, "\n")
}

// ── 辅助函数 ──

func colName(idx int) string {
	name, _ := excelize.ColumnNumberToName(idx + 1)
	return name
}

func cell(col string, row int) string {
	return fmt.Sprintf("%s%d", col, row)
}

package model

import (
	"database/sql/driver"
	"strings"

	pkgerrors "sgte/backend/pkg/errors"
)

// ════════════════════════════════════════════════════════════
// 卷宗状态（红绿灯）
// ════════════════════════════════════════════════════════════

// ExpedienteStatus 卷宗状态，按流程顺序排列
type ExpedienteStatus string

const (
	StatusPendiente  ExpedienteStatus = "pendiente"   // 红
	StatusEnProceso  ExpedienteStatus = "en_proceso"  // 黄
	StatusListoEnvio ExpedienteStatus = "listo_envio" // 绿
	StatusEnviado    ExpedienteStatus = "enviado"
	StatusAprobado   ExpedienteStatus = "aprobado"
	StatusTitulado   ExpedienteStatus = "titulado"
)

var expedienteStatusOrder = []ExpedienteStatus{
	StatusPendiente, StatusEnProceso, StatusListoEnvio, StatusEnviado, StatusAprobado, StatusTitulado,
}

var expedienteStatusLabels = map[ExpedienteStatus]string{
	StatusPendiente:  "Pendiente",
	StatusEnProceso:  "En Proceso",
	StatusListoEnvio: "Listo para Envío",
	StatusEnviado:    "Enviado a Registro",
	StatusAprobado:   "Aprobado por Registro",
	StatusTitulado:   "Titulado",
}

// ExpedienteStatuses 返回全部状态（流程顺序）
func ExpedienteStatuses() []ExpedienteStatus {
	out := make([]ExpedienteStatus, len(expedienteStatusOrder))
	copy(out, expedienteStatusOrder)
	return out
}

// ParseExpedienteStatus 解析状态标签（不区分大小写）
func ParseExpedienteStatus(s string) (ExpedienteStatus, error) {
	st := ExpedienteStatus(strings.ToLower(strings.TrimSpace(s)))
	if !st.Valid() {
		return "", pkgerrors.NewValidation("estado", "无效的卷宗状态: "+s)
	}
	return st, nil
}

func (s ExpedienteStatus) Valid() bool {
	_, ok := expedienteStatusLabels[s]
	return ok
}

func (s ExpedienteStatus) String() string { return string(s) }

func (s ExpedienteStatus) Label() string { return expedienteStatusLabels[s] }

// Rank 流程中的位置，从 0 开始；无效状态返回 -1
func (s ExpedienteStatus) Rank() int {
	for i, st := range expedienteStatusOrder {
		if st == s {
			return i
		}
	}
	return -1
}

// PreSubmission 是否仍处于提交登记处之前（可随材料清单自动调整）
func (s ExpedienteStatus) PreSubmission() bool {
	return s == StatusPendiente || s == StatusEnProceso || s == StatusListoEnvio
}

func (s *ExpedienteStatus) Scan(src interface{}) error {
	return scanEnum(s, src, ParseExpedienteStatus)
}

func (s ExpedienteStatus) Value() (driver.Value, error) { return valueEnum(s, s.Valid()) }

// ════════════════════════════════════════════════════════════
// 材料类别
// ════════════════════════════════════════════════════════════

// DocumentCategory 学生材料类别
type DocumentCategory string

const (
	DocBienestar        DocumentCategory = "bienestar"
	DocFinanzasTitulo   DocumentCategory = "finanzas_titulo"
	DocFinanzasLicencia DocumentCategory = "finanzas_licencia"
	DocBiblioteca       DocumentCategory = "biblioteca"
	DocSDT              DocumentCategory = "sdt"
	DocMemorandum       DocumentCategory = "memorandum"
	DocActa             DocumentCategory = "acta"
	DocOtro             DocumentCategory = "otro"
)

var documentCategoryOrder = []DocumentCategory{
	DocBienestar, DocFinanzasTitulo, DocFinanzasLicencia, DocBiblioteca, DocSDT, DocMemorandum, DocActa, DocOtro,
}

var documentCategoryLabels = map[DocumentCategory]string{
	DocBienestar:        "Bienestar Estudiantil",
	DocFinanzasTitulo:   "Finanzas (Título)",
	DocFinanzasLicencia: "Finanzas (Licenciatura)",
	DocBiblioteca:       "Biblioteca",
	DocSDT:              "SDT (Secretaría Docente)",
	DocMemorandum:       "Memorándum de Solicitud",
	DocActa:             "Acta",
	DocOtro:             "Otro",
}

// DocumentCategories 返回全部类别（固定顺序）
func DocumentCategories() []DocumentCategory {
	out := make([]DocumentCategory, len(documentCategoryOrder))
	copy(out, documentCategoryOrder)
	return out
}

func ParseDocumentCategory(s string) (DocumentCategory, error) {
	c := DocumentCategory(strings.ToLower(strings.TrimSpace(s)))
	if !c.Valid() {
		return "", pkgerrors.NewValidation("tipo", "无效的材料类别: "+s)
	}
	return c, nil
}

func (c DocumentCategory) Valid() bool {
	_, ok := documentCategoryLabels[c]
	return ok
}

func (c DocumentCategory) String() string { return string(c) }

func (c DocumentCategory) Label() string { return documentCategoryLabels[c] }

// Financial 是否为财务结清类材料（学位或学士二选一）
func (c DocumentCategory) Financial() bool {
	return c == DocFinanzasTitulo || c == DocFinanzasLicencia
}

func (c *DocumentCategory) Scan(src interface{}) error {
	return scanEnum(c, src, ParseDocumentCategory)
}

func (c DocumentCategory) Value() (driver.Value, error) { return valueEnum(c, c.Valid()) }

// ════════════════════════════════════════════════════════════
// 毕业方式
// ════════════════════════════════════════════════════════════

// ProjectModality 毕业项目完成方式
type ProjectModality string

const (
	ModalityTesis     ProjectModality = "tesis"
	ModalityProyecto  ProjectModality = "proyecto"
	ModalitySeminario ProjectModality = "seminario"
	ModalityPractica  ProjectModality = "practica_profesional"
	ModalityExamen    ProjectModality = "examen_titulo"
)

var projectModalityLabels = map[ProjectModality]string{
	ModalityTesis:     "Tesis",
	ModalityProyecto:  "Proyecto de Título",
	ModalitySeminario: "Seminario",
	ModalityPractica:  "Práctica Profesional",
	ModalityExamen:    "Examen de Título",
}

func ParseProjectModality(s string) (ProjectModality, error) {
	m := ProjectModality(strings.ToLower(strings.TrimSpace(s)))
	if !m.Valid() {
		return "", pkgerrors.NewValidation("modalidad_titulacion", "无效的毕业方式: "+s)
	}
	return m, nil
}

func (m ProjectModality) Valid() bool {
	_, ok := projectModalityLabels[m]
	return ok
}

func (m ProjectModality) String() string { return string(m) }

func (m ProjectModality) Label() string { return projectModalityLabels[m] }

func (m *ProjectModality) Scan(src interface{}) error {
	return scanEnum(m, src, ParseProjectModality)
}

func (m ProjectModality) Value() (driver.Value, error) { return valueEnum(m, m.Valid()) }

// ════════════════════════════════════════════════════════════
// 里程碑类型
// ════════════════════════════════════════════════════════════

// MilestoneType 毕业流程里程碑
type MilestoneType string

const (
	MilestoneNotificacionComision MilestoneType = "notificacion_comision"
	MilestoneEntregaAvance        MilestoneType = "entrega_avance"
	MilestonePresentacionAvance   MilestoneType = "presentacion_avance"
	MilestoneEntregaDocFinal      MilestoneType = "entrega_doc_final"
	MilestoneAceptacionBiblioteca MilestoneType = "aceptacion_biblioteca"
	MilestoneExamenGrado          MilestoneType = "examen_grado"
)

var milestoneTypeLabels = map[MilestoneType]string{
	MilestoneNotificacionComision: "Notificación a Comisión",
	MilestoneEntregaAvance:        "Entrega de Avance",
	MilestonePresentacionAvance:   "Presentación de Avance",
	MilestoneEntregaDocFinal:      "Entrega de Documento Final",
	MilestoneAceptacionBiblioteca: "Aceptación de Biblioteca",
	MilestoneExamenGrado:          "Examen de Grado",
}

func ParseMilestoneType(s string) (MilestoneType, error) {
	t := MilestoneType(strings.ToLower(strings.TrimSpace(s)))
	if !t.Valid() {
		return "", pkgerrors.NewValidation("tipo", "无效的里程碑类型: "+s)
	}
	return t, nil
}

func (t MilestoneType) Valid() bool {
	_, ok := milestoneTypeLabels[t]
	return ok
}

func (t MilestoneType) String() string { return string(t) }

func (t MilestoneType) Label() string { return milestoneTypeLabels[t] }

func (t *MilestoneType) Scan(src interface{}) error {
	return scanEnum(t, src, ParseMilestoneType)
}

func (t MilestoneType) Value() (driver.Value, error) { return valueEnum(t, t.Valid()) }

// ════════════════════════════════════════════════════════════
// 学生就读模式
// ════════════════════════════════════════════════════════════

// EnrollmentModality 就读模式
type EnrollmentModality string

const (
	EnrollmentDiurno     EnrollmentModality = "diurno"
	EnrollmentVespertino EnrollmentModality = "vespertino"
	EnrollmentOnline     EnrollmentModality = "online"
)

var enrollmentModalityLabels = map[EnrollmentModality]string{
	EnrollmentDiurno:     "Diurno",
	EnrollmentVespertino: "Vespertino",
	EnrollmentOnline:     "Online",
}

func ParseEnrollmentModality(s string) (EnrollmentModality, error) {
	m := EnrollmentModality(strings.ToLower(strings.TrimSpace(s)))
	if !m.Valid() {
		return "", pkgerrors.NewValidation("modalidad", "无效的就读模式: "+s)
	}
	return m, nil
}

func (m EnrollmentModality) Valid() bool {
	_, ok := enrollmentModalityLabels[m]
	return ok
}

func (m EnrollmentModality) String() string { return string(m) }

func (m EnrollmentModality) Label() string { return enrollmentModalityLabels[m] }

func (m *EnrollmentModality) Scan(src interface{}) error {
	return scanEnum(m, src, ParseEnrollmentModality)
}

func (m EnrollmentModality) Value() (driver.Value, error) { return valueEnum(m, m.Valid()) }

package model

import (
	"errors"
	"testing"

	pkgerrors "sgte/backend/pkg/errors"
)

func TestParseExpedienteStatus(t *testing.T) {
	st, err := ParseExpedienteStatus(" Listo_Envio ")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if st != StatusListoEnvio {
		t.Errorf("expected listo_envio, got %s", st)
	}

	_, err = ParseExpedienteStatus("archivado")
	if !errors.Is(err, pkgerrors.ErrValidation) {
		t.Errorf("expected ErrValidation, got %v", err)
	}
}

func TestExpedienteStatus_RankFollowsWorkflow(t *testing.T) {
	all := ExpedienteStatuses()
	if len(all) != 6 {
		t.Fatalf("expected 6 statuses, got %d", len(all))
	}
	for i, st := range all {
		if st.Rank() != i {
			t.Errorf("%s: expected rank %d, got %d", st, i, st.Rank())
		}
		if st.Label() == "" {
			t.Errorf("%s: missing label", st)
		}
	}
	if ExpedienteStatus("x").Rank() != -1 {
		t.Error("invalid status should have rank -1")
	}
	if !StatusListoEnvio.PreSubmission() || StatusEnviado.PreSubmission() {
		t.Error("PreSubmission boundary should be between listo_envio and enviado")
	}
}

func TestEnumScan(t *testing.T) {
	var st ExpedienteStatus
	if err := st.Scan([]byte("enviado")); err != nil || st != StatusEnviado {
		t.Errorf("scan []byte: got %s, %v", st, err)
	}
	if err := st.Scan("aprobado"); err != nil || st != StatusAprobado {
		t.Errorf("scan string: got %s, %v", st, err)
	}
	if err := st.Scan("desconocido"); err == nil {
		t.Error("expected error scanning unknown tag")
	}
	if err := st.Scan(nil); err == nil {
		t.Error("expected error scanning NULL")
	}
	if err := st.Scan(42); err == nil {
		t.Error("expected error scanning int")
	}

	var cat DocumentCategory
	if err := cat.Scan("finanzas_licencia"); err != nil || cat != DocFinanzasLicencia {
		t.Errorf("scan category: got %s, %v", cat, err)
	}
	var mod EnrollmentModality
	if err := mod.Scan("vespertino"); err != nil || mod != EnrollmentVespertino {
		t.Errorf("scan modality: got %s, %v", mod, err)
	}
}

func TestEnumValue(t *testing.T) {
	v, err := DocSDT.Value()
	if err != nil || v != "sdt" {
		t.Errorf("expected sdt, got %v, %v", v, err)
	}
	if _, err := DocumentCategory("pasaporte").Value(); err == nil {
		t.Error("expected error writing invalid category")
	}
	if _, err := MilestoneType("").Value(); err == nil {
		t.Error("expected error writing empty milestone type")
	}
}

func TestDocumentCategory_Labels(t *testing.T) {
	cases := map[DocumentCategory]string{
		DocBienestar:        "Bienestar Estudiantil",
		DocFinanzasTitulo:   "Finanzas (Título)",
		DocFinanzasLicencia: "Finanzas (Licenciatura)",
		DocSDT:              "SDT (Secretaría Docente)",
		DocMemorandum:       "Memorándum de Solicitud",
	}
	for cat, want := range cases {
		if got := cat.Label(); got != want {
			t.Errorf("%s: expected %q, got %q", cat, want, got)
		}
	}
	if !DocFinanzasLicencia.Financial() || DocBiblioteca.Financial() {
		t.Error("Financial() mismatch")
	}
	if len(DocumentCategories()) != 8 {
		t.Errorf("expected 8 categories, got %d", len(DocumentCategories()))
	}
}

func TestParseOtherEnums(t *testing.T) {
	if m, err := ParseProjectModality("PRACTICA_PROFESIONAL"); err != nil || m != ModalityPractica {
		t.Errorf("got %s, %v", m, err)
	}
	if _, err := ParseProjectModality("memoria"); !errors.Is(err, pkgerrors.ErrValidation) {
		t.Errorf("expected ErrValidation, got %v", err)
	}
	if m, err := ParseMilestoneType("examen_grado"); err != nil || m != MilestoneExamenGrado {
		t.Errorf("got %s, %v", m, err)
	}
	if m, err := ParseEnrollmentModality("Online"); err != nil || m != EnrollmentOnline {
		t.Errorf("got %s, %v", m, err)
	}
}

func TestProject_AuthorRUNs(t *testing.T) {
	p := &Project{StudentRUN1: "12.345.678-5"}
	if got := p.AuthorRUNs(); len(got) != 1 {
		t.Errorf("expected 1 author, got %v", got)
	}
	co := "11.111.111-1"
	p.StudentRUN2 = &co
	if got := p.AuthorRUNs(); len(got) != 2 || got[1] != co {
		t.Errorf("expected 2 authors, got %v", got)
	}
	empty := ""
	p.StudentRUN2 = &empty
	if got := p.AuthorRUNs(); len(got) != 1 {
		t.Errorf("empty co-author should be ignored, got %v", got)
	}
}

package prompt

import (
	"context"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-brandmanual/pkg/customization"
	"github.com/goliatone/go-brandmanual/pkg/formdata"
	"github.com/goliatone/go-brandmanual/pkg/templates"
)

type stubDriver struct {
	inputs       []string
	textAreas    []string
	selectIdx    []int
	multiIdx     [][]int
	confirm      []bool
	infoMessages []string
	messages     []string
	inputPos     int
	textPos      int
	selectPos    int
	multiPos     int
	confirmPos   int
}

func (s *stubDriver) Input(_ context.Context, cfg InputConfig) (string, error) {
	if s.inputPos >= len(s.inputs) {
		return "", errors.New("no input scripted")
	}
	val := s.inputs[s.inputPos]
	s.inputPos++
	s.messages = append(s.messages, cfg.Message)
	if cfg.Validator != nil {
		if err := cfg.Validator(val); err != nil {
			return "", err
		}
	}
	return val, nil
}

func (s *stubDriver) Confirm(_ context.Context, _ ConfirmConfig) (bool, error) {
	if s.confirmPos >= len(s.confirm) {
		return false, errors.New("no confirm scripted")
	}
	val := s.confirm[s.confirmPos]
	s.confirmPos++
	return val, nil
}

func (s *stubDriver) Select(_ context.Context, _ SelectConfig) (int, error) {
	if s.selectPos >= len(s.selectIdx) {
		return -1, errors.New("no select scripted")
	}
	val := s.selectIdx[s.selectPos]
	s.selectPos++
	return val, nil
}

func (s *stubDriver) MultiSelect(_ context.Context, _ SelectConfig) ([]int, error) {
	if s.multiPos >= len(s.multiIdx) {
		return nil, errors.New("no multiselect scripted")
	}
	val := s.multiIdx[s.multiPos]
	s.multiPos++
	return val, nil
}

func (s *stubDriver) TextArea(_ context.Context, cfg TextAreaConfig) (string, error) {
	if s.textPos >= len(s.textAreas) {
		return "", errors.New("no textarea scripted")
	}
	val := s.textAreas[s.textPos]
	s.textPos++
	s.messages = append(s.messages, cfg.Message)
	return val, nil
}

func (s *stubDriver) Info(_ context.Context, msg string) error {
	s.infoMessages = append(s.infoMessages, msg)
	return nil
}

func TestFillSections(t *testing.T) {
	driver := &stubDriver{
		inputs:    []string{"Hotel Aurora", "Boutique", " Lisboa ", "https://aurora.example", "Acolher", "Cuidado", "Luz"},
		textAreas: []string{"Delight guests", "Be the dawn", "", "Desc 1", "Desc 2", "Desc 3"},
	}
	form := formdata.NewForm(formdata.DefaultFields()...)
	form.SetValue("hotelType", "Boutique")

	changed, err := NewFiller(driver).Fill(context.Background(), form, "info-basicas", "identidade")
	if err != nil {
		t.Fatalf("fill: %v", err)
	}
	if changed != 11 {
		t.Fatalf("expected 11 changed fields, got %d", changed)
	}
	if got := form.Value("hotelLocation"); got != "Lisboa" {
		t.Fatalf("value not trimmed: %q", got)
	}
	want := []string{"\n== Informações Básicas ==", "\n== Identidade da Marca =="}
	if diff := cmp.Diff(want, driver.infoMessages); diff != "" {
		t.Fatalf("section headers mismatch (-want +got):\n%s", diff)
	}
	if driver.messages[0] != "Nome do Hotel *" {
		t.Fatalf("required marker missing: %q", driver.messages[0])
	}
}

func TestFillValidatesInput(t *testing.T) {
	driver := &stubDriver{inputs: []string{"Hotel", "", "", "not a url"}}
	form := formdata.NewForm(formdata.DefaultFields()...)
	if _, err := NewFiller(driver).Fill(context.Background(), form, "info-basicas"); err == nil {
		t.Fatalf("expected url validation error")
	}
}

func TestChooseTemplateAndSections(t *testing.T) {
	driver := &stubDriver{
		selectIdx: []int{2},
		multiIdx:  [][]int{{0, 1}},
	}
	f := NewFiller(driver)

	list := templates.Default().List()
	got, err := f.ChooseTemplate(context.Background(), list, "classic")
	if err != nil {
		t.Fatalf("choose template: %v", err)
	}
	if got.ID != list[2].ID {
		t.Fatalf("expected %s, got %s", list[2].ID, got.ID)
	}

	c := customization.Default()
	if err := f.ChooseSections(context.Background(), &c); err != nil {
		t.Fatalf("choose sections: %v", err)
	}
	for i, info := range customization.Catalog() {
		if want := i < 2; c.SectionEnabled(info.ID) != want {
			t.Fatalf("section %s enabled=%v, want %v", info.ID, !want, want)
		}
	}
}

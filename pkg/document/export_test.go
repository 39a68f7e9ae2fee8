package document

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2025, 7, 14, 10, 0, 0, 0, time.UTC)

func jeanRakoto() EvaluationSubject {
	return EvaluationSubject{
		ID:        "eval-1",
		FirstName: "Jean",
		LastName:  "Rakoto",
		StartDate: time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC),
		EndDate:   time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC),
		Grade:     17,
		Comment:   "Excellent travail",
	}
}

func sampleAssignment() AssignmentSubject {
	return AssignmentSubject{
		ID:             "asg-1",
		StudentName:    "Hery  Andrianina",
		SupervisorName: "Mme Rasoa",
		CompanyName:    "Telma",
		DepartmentName: "Réseaux",
		Status:         "assigned",
		StartDate:      time.Date(2025, 2, 3, 0, 0, 0, 0, time.UTC),
		EndDate:        time.Date(2025, 5, 30, 0, 0, 0, 0, time.UTC),
	}
}

type recordingFactory struct {
	canvases    []*recordingCanvas
	finalizeErr error
}

func (f *recordingFactory) New(Metadata) Canvas {
	c := newRecordingCanvas()
	c.finalizeErr = f.finalizeErr
	f.canvases = append(f.canvases, c)
	return c
}

type mapLoader map[string]*Asset

func (m mapLoader) Load(ctx context.Context, ref string) (*Asset, error) {
	if asset, ok := m[ref]; ok {
		return asset, nil
	}
	return nil, errors.New("not found: " + ref)
}

// hangingLoader never resolves before the context ends.
type hangingLoader struct{}

func (hangingLoader) Load(ctx context.Context, ref string) (*Asset, error) {
	<-ctx.Done()
	return nil, ctx.Err()
}

func newTestGenerator(factory *recordingFactory, opts Options) *Generator {
	opts.Now = func() time.Time { return fixedNow }
	opts.NewCanvas = factory.New
	return NewGenerator(opts)
}

func TestGenerateCertificateScenario(t *testing.T) {
	factory := &recordingFactory{}
	gen := newTestGenerator(factory, Options{})

	artifact, err := gen.Generate(context.Background(), jeanRakoto())
	require.NoError(t, err)

	assert.Equal(t, "certificat_stage_Jean_Rakoto_"+strconv.Itoa(fixedNow.Year())+".pdf", artifact.Filename)
	assert.Equal(t, ContentType, artifact.ContentType)
	assert.NotEmpty(t, artifact.Content)

	var emphasis []string
	styles := map[string]Style{}
	for _, line := range artifact.Lines {
		styles[line.Text] = line.Style
		if line.Style == StyleEmphasis {
			emphasis = append(emphasis, line.Text)
		}
	}
	assert.Equal(t, []string{"JEAN RAKOTO"}, emphasis)
	assert.Contains(t, styles, "Note obtenue : 17/20")
	assert.Contains(t, styles, "Appréciation : TRÈS BIEN")
	assert.Equal(t, StyleHighlight, styles["ÉVALUATION FINALE :"])
	assert.Contains(t, styles, "a effectué un stage dans nos services du 01/03/2025")

	canvas := factory.canvases[0]
	assert.Contains(t, canvas.texts(), "14/07/2025")
	assert.Contains(t, canvas.texts(), "Le Directeur Général")
	rotated := canvas.ops("rotated")
	require.Len(t, rotated, 1)
	assert.Equal(t, "OFFICIEL", rotated[0].Text)
	assert.Equal(t, Pale, rotated[0].Color)
}

func TestGenerateCursorIsMonotonic(t *testing.T) {
	for _, subject := range []Subject{jeanRakoto(), sampleAssignment()} {
		factory := &recordingFactory{}
		gen := newTestGenerator(factory, Options{})

		artifact, err := gen.Generate(context.Background(), subject)
		require.NoError(t, err)

		require.Len(t, artifact.Marks, 5)
		phases := []string{PhaseHeader, PhaseRule, PhaseTitle, PhaseBody, PhaseClosing}
		for i, mark := range artifact.Marks {
			assert.Equal(t, phases[i], mark.Phase)
			if i > 0 {
				assert.GreaterOrEqual(t, mark.Y, artifact.Marks[i-1].Y)
			}
		}

		// body lines are drawn top to bottom
		var last float64
		for _, call := range factory.canvases[0].ops("text") {
			if call.Y < 90 || call.X != 105 || call.Align != AlignCenter {
				continue
			}
			assert.GreaterOrEqual(t, call.Y, last, call.Text)
			last = call.Y
		}
	}
}

func TestGenerateAssignmentOrder(t *testing.T) {
	factory := &recordingFactory{}
	gen := newTestGenerator(factory, Options{})

	artifact, err := gen.Generate(context.Background(), sampleAssignment())
	require.NoError(t, err)
	assert.Equal(t, "affectation_Hery_Andrianina_2025.pdf", artifact.Filename)

	styles := map[string]Style{}
	for _, line := range artifact.Lines {
		styles[line.Text] = line.Style
	}
	assert.Equal(t, StyleEmphasis, styles["L'étudiant(e) : HERY  ANDRIANINA"])
	assert.Equal(t, StyleEmphasis, styles["est affecté(e) en stage dans l'entreprise : TELMA"])
	assert.Equal(t, StyleHighlight, styles["Statut actuel : AFFECTÉ"])
	assert.Equal(t, StyleHighlight, styles["Période de stage : du 03/02/2025 au 30/05/2025"])

	canvas := factory.canvases[0]
	assert.Empty(t, canvas.ops("rotated"))
	assert.Empty(t, canvas.ops("circle"))

	// three equal rule segments at one height, red, white then green
	lines := canvas.ops("line")
	require.Len(t, lines, 3)
	for _, l := range lines {
		assert.Equal(t, lines[0].Y, l.Y)
		assert.InDelta(t, lines[0].Box.W, l.Box.W, 1e-9)
	}
	assert.InDelta(t, 20.0, lines[0].X, 1e-9)
	assert.InDelta(t, 190.0, lines[2].X+lines[2].Box.W, 1e-9)
}

func TestGenerateOmitsAssetsThatNeverLoad(t *testing.T) {
	factory := &recordingFactory{}
	var omitted []string
	gen := newTestGenerator(factory, Options{
		Assets:       hangingLoader{},
		EmblemRef:    "emblem.png",
		LogoRefs:     map[string]string{KindTrainingCertificate: "https://cdn.invalid/logo.png"},
		AssetTimeout: 20 * time.Millisecond,
		OnAssetOmitted: func(kind, asset string) {
			omitted = append(omitted, kind+"/"+asset)
		},
	})

	start := time.Now()
	artifact, err := gen.Generate(context.Background(), jeanRakoto())
	require.NoError(t, err)
	assert.Less(t, time.Since(start), 2*time.Second)
	assert.NotEmpty(t, artifact.Content)
	assert.Empty(t, factory.canvases[0].ops("image"))
	assert.Equal(t, []string{"training_certificate/emblem", "training_certificate/logo"}, omitted)
}

func TestGeneratePlacesLoadedAssets(t *testing.T) {
	factory := &recordingFactory{}
	emblem := &Asset{Name: "emblem", Type: "PNG", Data: []byte{1}}
	logo := &Asset{Name: "logo", Type: "PNG", Data: []byte{2}}
	gen := newTestGenerator(factory, Options{
		Assets:    mapLoader{"emblem.png": emblem, "mtefop.png": logo},
		EmblemRef: "emblem.png",
		LogoRefs:  map[string]string{KindAssignmentOrder: "mtefop.png"},
		Seal: func(kind *Kind, reference string, year int) (string, error) {
			return "https://docs.example/verify/" + kind.Name + "-" + reference, nil
		},
	})

	_, err := gen.Generate(context.Background(), sampleAssignment())
	require.NoError(t, err)

	images := factory.canvases[0].ops("image")
	require.Len(t, images, 3)
	assert.Equal(t, emblem, images[0].Asset)
	assert.Equal(t, Box{X: 15, Y: 10, W: 50, H: 40}, images[0].Box)
	assert.Equal(t, logo, images[1].Asset)
	assert.Equal(t, Box{X: 145, Y: 10, W: 50, H: 40}, images[1].Box)
	assert.Equal(t, "seal", images[2].Asset.Name)
	assert.LessOrEqual(t, images[2].Box.Y+images[2].Box.H, 297.0-11)
}

func TestGenerateRejectsInvalidSubjectBeforeDrawing(t *testing.T) {
	bad := []Subject{
		EvaluationSubject{FirstName: "Jean", LastName: "Rakoto", StartDate: fixedNow, EndDate: fixedNow, Grade: 21},
		EvaluationSubject{FirstName: "", LastName: "Rakoto", StartDate: fixedNow, EndDate: fixedNow},
		EvaluationSubject{FirstName: "Jean", LastName: "Rakoto", StartDate: fixedNow, EndDate: fixedNow.AddDate(0, 0, -1)},
		AssignmentSubject{StudentName: "Hery", CompanyName: "Telma", StartDate: fixedNow, EndDate: fixedNow},
		nil,
	}
	for _, subject := range bad {
		factory := &recordingFactory{}
		gen := newTestGenerator(factory, Options{})

		artifact, err := gen.Generate(context.Background(), subject)
		require.Error(t, err)
		assert.Nil(t, artifact)
		assert.ErrorIs(t, err, ErrInvalidSubject)
		assert.Empty(t, factory.canvases, "no canvas may be created for an invalid subject")
	}
}

func TestGeneratePropagatesFinalizeErrorUnmodified(t *testing.T) {
	factory := &recordingFactory{finalizeErr: errEncode}
	gen := newTestGenerator(factory, Options{})

	artifact, err := gen.Generate(context.Background(), jeanRakoto())
	assert.Nil(t, artifact)
	assert.Same(t, errEncode, err)
}

func TestFilenameIsDeterministic(t *testing.T) {
	a := Filename("affectation", "Rasoa Nirina Be", fixedNow)
	b := Filename("affectation", "Rasoa Nirina Be", fixedNow.Add(time.Hour))
	assert.Equal(t, a, b)
	assert.Equal(t, "affectation_Rasoa_Nirina_Be_2025.pdf", a)
	assert.Equal(t, "certificat_stage_Jean_Rakoto_2025.pdf", Filename("certificat_stage", " Jean \t Rakoto ", fixedNow))
}

func TestPDFCanvasRendersRealDocument(t *testing.T) {
	gen := NewGenerator(Options{
		Now:       func() time.Time { return fixedNow },
		Assets:    mapLoader{"emblem.png": pngAsset(t), "broken.png": {Name: "broken", Type: "PNG", Data: []byte("not a png")}},
		EmblemRef: "emblem.png",
		LogoRefs:  map[string]string{KindTrainingCertificate: "broken.png"},
		Seal: func(kind *Kind, reference string, year int) (string, error) {
			return "seal-token", nil
		},
	})

	artifact, err := gen.Generate(context.Background(), jeanRakoto())
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(artifact.Content, []byte("%PDF")))
}

func pngAsset(t *testing.T) *Asset {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 8, 8))
	for x := 0; x < 8; x++ {
		img.Set(x, x, color.RGBA{R: 200, A: 255})
	}
	buf := &bytes.Buffer{}
	require.NoError(t, png.Encode(buf, img))
	return &Asset{Name: "emblem", Type: "PNG", Data: buf.Bytes()}
}

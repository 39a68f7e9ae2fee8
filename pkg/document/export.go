package document

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
)

// ErrInvalidSubject is returned before any drawing when a record is incomplete
// or out of range.
var ErrInvalidSubject = errors.New("invalid subject record")

// ContentType of every artifact.
const ContentType = "application/pdf"

// AssetLoader resolves an image reference (path or URL) to a placeable asset.
type AssetLoader interface {
	Load(ctx context.Context, ref string) (*Asset, error)
}

// SealFunc returns the text to encode in the verification QR code.
type SealFunc func(kind *Kind, reference string, year int) (string, error)

// Options configure a Generator. Zero values are usable.
type Options struct {
	Assets       AssetLoader
	EmblemRef    string
	LogoRefs     map[string]string
	AssetTimeout time.Duration
	IssuePlace   string
	Seal         SealFunc
	Now          func() time.Time
	NewCanvas    func(Metadata) Canvas
	Logger       *zap.Logger
	Validator    *validator.Validate
	// OnAssetOmitted is called for every image left out of a document.
	OnAssetOmitted func(kind, asset string)
}

// Artifact is a finalised document.
type Artifact struct {
	Filename    string       `json:"filename"`
	ContentType string       `json:"contentType"`
	Content     []byte       `json:"-"`
	Lines       []StyledLine `json:"lines"`
	Marks       []Mark       `json:"marks"`
}

// Generator validates a subject, waits for its images, composes and finalises
// the page. It holds no per-render state and is safe for concurrent use.
type Generator struct {
	opts Options
}

// NewGenerator builds a generator.
func NewGenerator(opts Options) *Generator {
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.Validator == nil {
		opts.Validator = validator.New()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.AssetTimeout <= 0 {
		opts.AssetTimeout = 3 * time.Second
	}
	if opts.NewCanvas == nil {
		logger := opts.Logger
		opts.NewCanvas = func(meta Metadata) Canvas { return NewPDFCanvas(meta, logger) }
	}
	return &Generator{opts: opts}
}

// Filename derives the download name: prefix, name with whitespace runs as
// underscores, then the year.
func Filename(prefix, fullName string, now time.Time) string {
	name := strings.Join(strings.Fields(fullName), "_")
	return fmt.Sprintf("%s_%s_%d.pdf", prefix, name, now.Year())
}

// Validate checks a subject without drawing anything.
func (g *Generator) Validate(subject Subject) error {
	if subject == nil {
		return fmt.Errorf("%w: no subject", ErrInvalidSubject)
	}
	if err := g.opts.Validator.Struct(subject); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidSubject, err)
	}
	return nil
}

// Now is the clock the generator stamps issue dates with.
func (g *Generator) Now() time.Time {
	return g.opts.Now()
}

// Generate renders subject. Finalisation errors are returned unwrapped.
func (g *Generator) Generate(ctx context.Context, subject Subject) (*Artifact, error) {
	if err := g.Validate(subject); err != nil {
		return nil, err
	}
	kind := subject.Kind()
	now := g.opts.Now()

	assets := g.loadAssets(ctx, kind, subject, now.Year())

	canvas := g.opts.NewCanvas(Metadata{
		Title:   kind.Title,
		Subject: subject.FullName(),
		Author:  "MTEFoP",
		Creator: "stage-docs-api",
	})
	composer := Composer{Kind: kind, IssuePlace: g.opts.IssuePlace}
	rendered := composer.Compose(canvas, subject.Body(), assets, now)

	content, err := canvas.Finalize()
	if err != nil {
		return nil, err
	}
	return &Artifact{
		Filename:    Filename(kind.FilePrefix, subject.FullName(), now),
		ContentType: ContentType,
		Content:     content,
		Lines:       rendered.Lines,
		Marks:       rendered.Marks,
	}, nil
}

// loadAssets resolves every image before drawing starts. Whatever is not ready
// when the timeout expires is left out.
func (g *Generator) loadAssets(ctx context.Context, kind *Kind, subject Subject, year int) Assets {
	var assets Assets
	if g.opts.Assets != nil {
		ctx, cancel := context.WithTimeout(ctx, g.opts.AssetTimeout)
		defer cancel()
		assets.Emblem = g.load(ctx, kind, "emblem", g.opts.EmblemRef)
		assets.Logo = g.load(ctx, kind, "logo", g.opts.LogoRefs[kind.LogoKey])
	}
	if g.opts.Seal != nil {
		content, err := g.opts.Seal(kind, subject.Reference(), year)
		if err == nil {
			assets.Seal, err = QRAsset(content, 256)
		}
		if err != nil {
			g.omitted(kind, "seal", err)
		}
	}
	return assets
}

func (g *Generator) load(ctx context.Context, kind *Kind, name, ref string) *Asset {
	if ref == "" {
		return nil
	}
	asset, err := g.opts.Assets.Load(ctx, ref)
	if err != nil {
		g.omitted(kind, name, err)
		return nil
	}
	return asset
}

func (g *Generator) omitted(kind *Kind, name string, err error) {
	g.opts.Logger.Warn("document asset omitted",
		zap.String("kind", kind.Name),
		zap.String("asset", name),
		zap.Error(err),
	)
	if g.opts.OnAssetOmitted != nil {
		g.opts.OnAssetOmitted(kind.Name, name)
	}
}

package testimonials

import (
	"net/http"
	"testing"

	errorsfeature "github.com/dalemusser/stratacms/internal/app/features/errors"
	testimonialstore "github.com/dalemusser/stratacms/internal/app/store/testimonials"
	"github.com/dalemusser/stratacms/internal/app/system/auth"
	"github.com/dalemusser/stratacms/internal/app/system/jsonutil"
	"github.com/dalemusser/stratacms/internal/domain/models"
	"github.com/dalemusser/stratacms/internal/testutil"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

func requireUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := auth.CurrentUser(r); !ok {
			jsonutil.Unauthorized(w, "missing bearer token")
			return
		}
		next.ServeHTTP(w, r)
	})
}

type fixture struct {
	store  *testimonialstore.Store
	router http.Handler
}

func setup(t *testing.T) fixture {
	t.Helper()
	db := testutil.SetupTestDB(t)
	store := testimonialstore.New(db)
	h := NewHandler(store, errorsfeature.NewErrorLogger(zap.NewNop()), zap.NewNop())
	return fixture{store: store, router: Routes(h, requireUser, nil)}
}

func (f fixture) do(r *http.Request) *testutil.ResponseRecorder {
	rec := testutil.NewRecorder()
	f.router.ServeHTTP(rec, r)
	return rec
}

func (f fixture) seed(t *testing.T, author string, rating int, featured, active bool) models.Testimonial {
	t.Helper()
	ctx, cancel := testutil.TestContext()
	defer cancel()
	tm, err := f.store.Create(ctx, testimonialstore.CreateInput{
		Quote:      map[string]string{"vi": "Món ăn ngon của " + author, "en": "Great food from " + author},
		AuthorRole: map[string]string{"en": "Diner"},
		Rating:     rating,
		AuthorName: author,
		Source:     models.SourceGoogle,
		IsFeatured: featured,
		IsActive:   &active,
	})
	if err != nil {
		t.Fatalf("seed Create() error = %v", err)
	}
	return tm
}

func TestCreate(t *testing.T) {
	f := setup(t)
	admin := testutil.AdminUser()

	valid := func() map[string]any {
		return map[string]any{
			"quote_i18n": map[string]string{"vi": "Tuyệt vời!"},
			"rating":     5,
			"authorName": "Lan",
			"sortOrder":  0,
		}
	}

	t.Run("required fields", func(t *testing.T) {
		for _, drop := range []string{"quote_i18n", "rating", "authorName", "sortOrder"} {
			body := valid()
			delete(body, drop)
			rec := f.do(testutil.NewAuthenticatedJSONRequest(http.MethodPost, "/", body, admin))
			rec.AssertStatus(t, http.StatusBadRequest)
			if msg := rec.ErrorMessage(t); msg != "quote_i18n, rating, authorName, sortOrder are required" {
				t.Errorf("without %s: error = %q", drop, msg)
			}
		}
	})

	t.Run("empty quote counts as missing", func(t *testing.T) {
		body := valid()
		body["quote_i18n"] = map[string]string{"vi": "  "}
		rec := f.do(testutil.NewAuthenticatedJSONRequest(http.MethodPost, "/", body, admin))
		rec.AssertStatus(t, http.StatusBadRequest)
	})

	t.Run("rating out of range", func(t *testing.T) {
		body := valid()
		body["rating"] = 6
		rec := f.do(testutil.NewAuthenticatedJSONRequest(http.MethodPost, "/", body, admin))
		rec.AssertStatus(t, http.StatusBadRequest)
		var resp struct {
			Fields map[string]string `json:"fields"`
		}
		rec.DecodeJSON(t, &resp)
		if resp.Fields["rating"] == "" {
			t.Errorf("fields = %v, want rating", resp.Fields)
		}
	})

	t.Run("bad reference ids", func(t *testing.T) {
		body := valid()
		body["avatarAssetId"] = "nope"
		body["mediaAssetIds"] = []string{primitive.NewObjectID().Hex(), "xyz"}
		rec := f.do(testutil.NewAuthenticatedJSONRequest(http.MethodPost, "/", body, admin))
		rec.AssertStatus(t, http.StatusBadRequest)
		var resp struct {
			Fields map[string]string `json:"fields"`
		}
		rec.DecodeJSON(t, &resp)
		if resp.Fields["avatarAssetId"] == "" || resp.Fields["mediaAssetIds"] == "" {
			t.Errorf("fields = %v", resp.Fields)
		}
	})

	t.Run("created", func(t *testing.T) {
		avatar := primitive.NewObjectID()
		body := valid()
		body["avatarAssetId"] = avatar.Hex()
		body["source"] = "Facebook"
		rec := f.do(testutil.NewAuthenticatedJSONRequest(http.MethodPost, "/", body, admin))
		rec.AssertStatus(t, http.StatusCreated)

		var got models.Testimonial
		rec.DecodeJSON(t, &got)
		if got.Slug != "tuyet-voi" || got.Source != models.SourceFacebook || !got.IsActive {
			t.Errorf("got = %+v", got)
		}
		if got.AvatarAssetID == nil || *got.AvatarAssetID != avatar {
			t.Errorf("avatarAssetId = %v, want %v", got.AvatarAssetID, avatar)
		}
	})
}

func TestList(t *testing.T) {
	f := setup(t)
	f.seed(t, "An", 5, true, true)
	f.seed(t, "Binh", 3, false, true)
	f.seed(t, "Chi", 4, true, false)

	tests := []struct {
		name   string
		req    *http.Request
		total  int64
		author string
	}{
		{"public", testutil.NewRequest(http.MethodGet, "/"), 2, ""},
		{"featured", testutil.NewRequest(http.MethodGet, "/?isFeatured=yes"), 1, "An"},
		{"min rating", testutil.NewRequest(http.MethodGet, "/?minRating=4"), 1, "An"},
		{"max rating", testutil.NewRequest(http.MethodGet, "/?maxRating=3.5"), 1, "Binh"},
		{"junk filters ignored", testutil.NewRequest(http.MethodGet, "/?isFeatured=maybe&minRating=abc&source=yelp"), 2, ""},
		{"search", testutil.NewRequest(http.MethodGet, "/?q=binh"), 1, "Binh"},
		{"admin", testutil.NewAuthenticatedRequest(http.MethodGet, "/admin", testutil.AdminUser()), 3, ""},
		{"admin featured inactive", testutil.NewAuthenticatedRequest(http.MethodGet, "/admin?isFeatured=1&isActive=0", testutil.AdminUser()), 1, "Chi"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := f.do(tt.req)
			rec.AssertStatus(t, http.StatusOK)
			var page jsonutil.Page[models.TestimonialView]
			rec.DecodeJSON(t, &page)
			if page.Total != tt.total {
				t.Errorf("total = %d, want %d", page.Total, tt.total)
			}
			if tt.author != "" && (len(page.Items) == 0 || page.Items[0].AuthorName != tt.author) {
				t.Errorf("items = %+v, want first author %s", page.Items, tt.author)
			}
		})
	}
}

func TestGet_Localized(t *testing.T) {
	f := setup(t)
	tm := f.seed(t, "Dung", 5, false, true)
	hidden := f.seed(t, "Em", 4, false, false)

	rec := f.do(testutil.NewRequest(http.MethodGet, "/"+tm.Slug))
	rec.AssertStatus(t, http.StatusOK)
	var view models.TestimonialView
	rec.DecodeJSON(t, &view)
	if view.Quote != "Món ăn ngon của Dung" {
		t.Errorf("quote = %q, want the default locale", view.Quote)
	}
	if view.AuthorRole != "Diner" {
		t.Errorf("authorRole = %q, want fallback to en", view.AuthorRole)
	}

	req := testutil.NewRequest(http.MethodGet, "/"+tm.ID.Hex())
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")
	rec = f.do(req)
	rec.DecodeJSON(t, &view)
	if view.Quote != "Great food from Dung" {
		t.Errorf("quote = %q, want English", view.Quote)
	}

	f.do(testutil.NewRequest(http.MethodGet, "/"+hidden.ID.Hex())).AssertStatus(t, http.StatusNotFound)
	f.do(testutil.NewAuthenticatedRequest(http.MethodGet, "/admin/"+hidden.ID.Hex(), testutil.EditorUser())).AssertStatus(t, http.StatusOK)
}

func TestUpdateAndDelete(t *testing.T) {
	f := setup(t)
	admin := testutil.AdminUser()
	tm := f.seed(t, "Giang", 4, false, true)

	avatar := primitive.NewObjectID()
	rec := f.do(testutil.NewAuthenticatedJSONRequest(http.MethodPatch, "/"+tm.ID.Hex(),
		map[string]any{"avatarAssetId": avatar.Hex(), "isFeatured": true}, admin))
	rec.AssertStatus(t, http.StatusOK)
	var got models.Testimonial
	rec.DecodeJSON(t, &got)
	if got.AvatarAssetID == nil || !got.IsFeatured {
		t.Fatalf("got = %+v", got)
	}

	rec = f.do(testutil.NewAuthenticatedJSONRequest(http.MethodPatch, "/"+tm.ID.Hex(),
		`{"avatarAssetId": null}`, admin))
	rec.AssertStatus(t, http.StatusOK)
	got = models.Testimonial{}
	rec.DecodeJSON(t, &got)
	if got.AvatarAssetID != nil {
		t.Errorf("avatarAssetId = %v, want cleared", got.AvatarAssetID)
	}

	rec = f.do(testutil.NewAuthenticatedJSONRequest(http.MethodPatch, "/"+tm.ID.Hex(),
		map[string]any{"rating": 0}, admin))
	rec.AssertStatus(t, http.StatusBadRequest)

	rec = f.do(testutil.NewAuthenticatedJSONRequest(http.MethodPatch, "/"+primitive.NewObjectID().Hex(),
		map[string]any{"rating": 3}, admin))
	rec.AssertStatus(t, http.StatusNotFound)

	f.do(testutil.NewAuthenticatedRequest(http.MethodDelete, "/"+tm.ID.Hex(), admin)).AssertStatus(t, http.StatusOK)
	f.do(testutil.NewAuthenticatedRequest(http.MethodDelete, "/"+tm.ID.Hex(), admin)).AssertStatus(t, http.StatusNotFound)
	f.do(testutil.NewRequest(http.MethodDelete, "/"+tm.ID.Hex())).AssertStatus(t, http.StatusUnauthorized)
}

package repository

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"virtualitems/internal/domain/entity"
	"virtualitems/internal/infrastructure/firebase"
)

const adminToken = "admin-token"

// fakeCatalog speaks the callable protocol over an in-memory catalog.
type fakeCatalog struct {
	mu       sync.Mutex
	items    map[string]*entity.VirtualItem
	images   map[string][]byte
	calls    map[string]int
	balances map[string]float64
	imports  []entity.CSVImport
	clock    int64
	nextID   int
}

func newFakeCatalog() *fakeCatalog {
	return &fakeCatalog{
		items:    make(map[string]*entity.VirtualItem),
		images:   make(map[string][]byte),
		calls:    make(map[string]int),
		balances: make(map[string]float64),
		clock:    1700000000000,
	}
}

func (f *fakeCatalog) seed(items ...*entity.VirtualItem) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, item := range items {
		f.items[item.ID] = item.Clone()
	}
}

func (f *fakeCatalog) callCount(op string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[op]
}

func (f *fakeCatalog) start(t *testing.T) *firebase.FunctionsClient {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(f.serve))
	t.Cleanup(server.Close)
	return firebase.NewFunctionsClient(firebase.FunctionsConfig{BaseURL: server.URL, Timeout: 5 * time.Second})
}

func (f *fakeCatalog) tick() int64 {
	f.clock += 1000
	return f.clock
}

func (f *fakeCatalog) serve(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Data map[string]json.RawMessage `json:"data"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeCallableError(w, http.StatusBadRequest, "INVALID_ARGUMENT", "bad envelope")
		return
	}

	op := strings.TrimPrefix(r.URL.Path, "/"+functionPrefix)
	caller := strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
	isAdmin := caller == adminToken

	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls[op]++

	str := func(key string) string {
		var s string
		_ = json.Unmarshal(req.Data[key], &s)
		return s
	}
	list := func(key string) []string {
		var s []string
		_ = json.Unmarshal(req.Data[key], &s)
		return s
	}

	switch op {
	case "getVirtualItemsByIds":
		var out []*entity.VirtualItem
		for _, id := range list("ids") {
			if item, ok := f.items[id]; ok {
				out = append(out, item)
			}
		}
		writeResult(w, map[string]interface{}{"virtualItems": out})

	case "getVirtualItems":
		writeResult(w, map[string]interface{}{"virtualItems": f.filter(func(v *entity.VirtualItem) bool {
			return contains(v.AppIDs, str("appId"))
		})})

	case "getAllVirtualItemsByAppIds":
		appIDs := list("appIds")
		var limit int
		_ = json.Unmarshal(req.Data["limit"], &limit)
		out := f.filter(func(v *entity.VirtualItem) bool {
			for _, id := range appIDs {
				if contains(v.AppIDs, id) {
					return true
				}
			}
			return false
		})
		if limit > 0 && len(out) > limit {
			out = out[:limit]
		}
		writeResult(w, map[string]interface{}{"virtualItems": out})

	case "getByTags":
		// One match per requested tag, so multi-tag items repeat like a naive union would.
		var out []*entity.VirtualItem
		for _, tag := range list("tags") {
			out = append(out, f.filter(func(v *entity.VirtualItem) bool { return contains(v.Tags, tag) })...)
		}
		writeResult(w, map[string]interface{}{"virtualItems": out})

	case "addVirtualItem":
		if !isAdmin {
			writeCallableError(w, http.StatusForbidden, "PERMISSION_DENIED", "admin role required")
			return
		}
		var item entity.VirtualItem
		_ = json.Unmarshal(req.Data["virtualItem"], &item)
		f.nextID++
		item.ID = fmt.Sprintf("generated-%d", f.nextID)
		item.CreatedAt = f.tick()
		item.UpdatedAt = item.CreatedAt
		item.CreatedBy = caller
		item.UpdatedBy = caller
		f.items[item.ID] = item.Clone()
		writeResult(w, item)

	case "updateVirtualItem":
		if !isAdmin {
			writeCallableError(w, http.StatusForbidden, "PERMISSION_DENIED", "admin role required")
			return
		}
		existing, ok := f.items[str("virtualItemId")]
		if !ok {
			writeCallableError(w, http.StatusNotFound, "NOT_FOUND", "virtual item not found")
			return
		}
		var item entity.VirtualItem
		_ = json.Unmarshal(req.Data["virtualItem"], &item)
		item.ID = existing.ID
		item.CreatedAt = existing.CreatedAt
		item.CreatedBy = existing.CreatedBy
		item.UpdatedAt = f.tick()
		item.UpdatedBy = caller
		f.items[item.ID] = item.Clone()
		writeResult(w, item)

	case "setName", "setDescription", "setProperties", "setTags":
		item, ok := f.items[str("virtualItemId")]
		if !ok {
			writeCallableError(w, http.StatusNotFound, "NOT_FOUND", "virtual item not found")
			return
		}
		switch op {
		case "setName":
			item.Name = str("name")
			writeResult(w, map[string]interface{}{"name": item.Name})
		case "setDescription":
			item.Description = str("description")
			writeResult(w, map[string]interface{}{"description": item.Description})
		case "setProperties":
			item.Properties = []entity.Properties{{AppIDs: []string{str("appId")}, JSON: str("properties")}}
			writeResult(w, map[string]interface{}{"properties": str("properties")})
		case "setTags":
			tags := list("tags")
			if appID := str("appId"); appID != "" {
				for i := range tags {
					tags[i] = tags[i] + "_" + appID
				}
			}
			item.Tags = tags
			writeResult(w, map[string]interface{}{"tags": tags})
		}

	case "getTags", "getProperties":
		item, ok := f.items[str("virtualItemId")]
		if !ok {
			writeCallableError(w, http.StatusNotFound, "NOT_FOUND", "virtual item not found")
			return
		}
		if op == "getTags" {
			writeResult(w, map[string]interface{}{"tags": item.Tags})
			return
		}
		props := "{}"
		if len(item.Properties) > 0 {
			props = item.Properties[0].JSON
		}
		writeResult(w, map[string]interface{}{"properties": props})

	case "downloadImage":
		data, ok := f.images[str("virtualItemId")]
		if !ok {
			writeResult(w, map[string]interface{}{"image": nil})
			return
		}
		writeResult(w, map[string]interface{}{"image": base64.StdEncoding.EncodeToString(data)})

	case "uploadImage":
		if !isAdmin {
			writeCallableError(w, http.StatusForbidden, "PERMISSION_DENIED", "only the owner can upload")
			return
		}
		data, err := base64.StdEncoding.DecodeString(str("image"))
		if err != nil {
			writeCallableError(w, http.StatusBadRequest, "INVALID_ARGUMENT", "image must be base64")
			return
		}
		f.images[str("virtualItemId")] = data
		writeResult(w, map[string]interface{}{})

	case "buyVirtualItems":
		ids := list("itemIds")
		currencies := list("currencies")
		for _, id := range ids {
			item, ok := f.items[id]
			if !ok {
				writeCallableError(w, http.StatusNotFound, "NOT_FOUND", "virtual item not found: "+id)
				return
			}
			for _, price := range item.Prices {
				if contains(currencies, price.Name) && f.balances[price.Name] < price.Quantity {
					writeCallableError(w, http.StatusBadRequest, "FAILED_PRECONDITION",
						fmt.Sprintf("Not enough %s: have %.0f, need %.0f", price.Name, f.balances[price.Name], price.Quantity))
					return
				}
			}
		}
		writeResult(w, map[string]interface{}{"purchasedItemIds": ids})

	case "addFromCSV":
		if !isAdmin {
			writeCallableError(w, http.StatusForbidden, "PERMISSION_DENIED", "admin role required")
			return
		}
		var stub bool
		_ = json.Unmarshal(req.Data["addBlockchainStub"], &stub)
		f.imports = append(f.imports, entity.CSVImport{
			AppPackageName:    str("appPackageName"),
			VirtualItemName:   str("virtualItemName"),
			AddBlockchainStub: stub,
			CSVFileString:     str("csvFileString"),
		})
		writeResult(w, map[string]interface{}{})

	default:
		writeCallableError(w, http.StatusNotFound, "NOT_FOUND", "unknown function "+op)
	}
}

func (f *fakeCatalog) filter(match func(*entity.VirtualItem) bool) []*entity.VirtualItem {
	out := []*entity.VirtualItem{}
	for _, item := range f.items {
		if match(item) {
			out = append(out, item)
		}
	}
	return out
}

func writeResult(w http.ResponseWriter, result interface{}) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{"result": result})
}

func writeCallableError(w http.ResponseWriter, status int, code, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]interface{}{
		"error": map[string]string{"status": code, "message": message},
	})
}

func contains(values []string, want string) bool {
	for _, v := range values {
		if v == want {
			return true
		}
	}
	return false
}

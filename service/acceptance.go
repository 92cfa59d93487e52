package service

import (
	"net/http"

	"github.com/fulldump/apitest"
	"github.com/fulldump/biff"
)

type JSON = map[string]interface{}

const (
	alice = "4vJ9JU1bJJE96FWSJKvHsmmFADCg4gpZQff4P3bkLKi"  // 0x01 * 32, shard 0
	bob   = "9iY8Tr5KHUKDzgGUGY5XXvZQVV8xtCZn5dyeX2nHNycC" // 0x81 * 32, shard 1

	zeroPubkey = "11111111111111111111111111111111"

	// sha256 of an empty live level: a zero u64 count
	emptyHash = "CoRutESHXR94goeNsP5Za7RKyKrK8AYLQa4PwvT2934w"
)

func Acceptance(a *biff.A, apiRequest func(method, path string) *apitest.Request) {

	a.Alternative("Initial state", func(a *biff.A) {
		resp := apiRequest("GET", "/state").Do()
		Save(resp, "Get state", `
			Depth of the checkpoint stack, transaction count and hash of the
			live level.
		`)

		biff.AssertEqual(resp.StatusCode, http.StatusOK)
		biff.AssertEqualJson(resp.BodyJson(), JSON{
			"depth":             0,
			"transaction_count": 0,
			"hash":              emptyHash,
		})
	})

	a.Alternative("Get missing account", func(a *biff.A) {
		resp := apiRequest("GET", "/accounts/"+alice).Do()
		Save(resp, "Get account - not found", ``)

		biff.AssertEqual(resp.StatusCode, http.StatusNotFound)
	})

	a.Alternative("Get invalid pubkey", func(a *biff.A) {
		resp := apiRequest("GET", "/accounts/not-base58-0OIl").Do()

		biff.AssertEqual(resp.StatusCode, http.StatusBadRequest)
	})

	a.Alternative("Rollback without checkpoint", func(a *biff.A) {
		resp := apiRequest("POST", "/state:rollback").Do()
		Save(resp, "Rollback - empty stack", ``)

		biff.AssertEqual(resp.StatusCode, http.StatusConflict)
	})

	a.Alternative("Unknown resource", func(a *biff.A) {
		resp := apiRequest("GET", "/nope").Do()

		biff.AssertEqual(resp.StatusCode, http.StatusNotFound)
		biff.AssertEqualJson(resp.BodyJson(), JSON{
			"error": JSON{
				"message":     "resource_not_found",
				"description": "resource '/v1/nope' not found",
			},
		})
	})

	a.Alternative("Method not allowed", func(a *biff.A) {
		resp := apiRequest("DELETE", "/state").Do()

		biff.AssertEqual(resp.StatusCode, http.StatusMethodNotAllowed)
		biff.AssertEqualJson(resp.BodyJson(), JSON{
			"error": JSON{
				"message":     "method_not_allowed",
				"description": "method 'DELETE' not allowed",
			},
		})
	})

	a.Alternative("Malformed JSON", func(a *biff.A) {
		resp := apiRequest("POST", "/state:purge").
			WithBodyString(`{"depth": x}`).Do()

		biff.AssertEqual(resp.StatusCode, http.StatusBadRequest)
		biff.AssertEqual(resp.BodyJson().(JSON)["error"].(JSON)["description"], "Malformed JSON")
	})

	a.Alternative("Put account", func(a *biff.A) {
		resp := apiRequest("PUT", "/accounts/"+alice).
			WithBodyJson(JSON{
				"tokens":   10,
				"userdata": "aGk=",
			}).Do()
		Save(resp, "Put account", `
			Userdata is base64 encoded. Storing zero tokens removes the account.
		`)

		expectedAlice := JSON{
			"id":         alice,
			"tokens":     10,
			"owner":      zeroPubkey,
			"executable": false,
			"loader":     zeroPubkey,
			"userdata":   "aGk=",
		}

		biff.AssertEqual(resp.StatusCode, http.StatusOK)
		biff.AssertEqualJson(resp.BodyJson(), expectedAlice)

		a.Alternative("Get account", func(a *biff.A) {
			resp := apiRequest("GET", "/accounts/"+alice).Do()
			Save(resp, "Get account", ``)

			biff.AssertEqual(resp.StatusCode, http.StatusOK)
			biff.AssertEqualJson(resp.BodyJson(), expectedAlice)
		})

		a.Alternative("List accounts", func(a *biff.A) {
			apiRequest("PUT", "/accounts/"+bob).WithBodyJson(JSON{"tokens": 3}).Do()

			resp := apiRequest("GET", "/accounts").Do()
			Save(resp, "List accounts", ``)

			biff.AssertEqual(resp.StatusCode, http.StatusOK)
			biff.AssertEqualJson(resp.BodyJson(), []string{alice, bob})
		})

		a.Alternative("Find accounts", func(a *biff.A) {
			apiRequest("PUT", "/accounts/"+bob).WithBodyJson(JSON{"tokens": 3}).Do()

			resp := apiRequest("POST", "/accounts:find").
				WithBodyJson(JSON{
					"filter": JSON{
						"tokens": JSON{"$gt": 5},
					},
				}).Do()
			Save(resp, "Find accounts", `
				Filters use the connor syntax over the JSON form of the accounts.
			`)

			biff.AssertEqual(resp.StatusCode, http.StatusOK)
			biff.AssertEqualJson(resp.BodyJson(), []JSON{expectedAlice})

			a.Alternative("Skip and limit", func(a *biff.A) {
				resp := apiRequest("POST", "/accounts:find").
					WithBodyJson(JSON{
						"skip":  1,
						"limit": 1,
					}).Do()

				biff.AssertEqual(resp.StatusCode, http.StatusOK)
				list := resp.BodyJson().([]interface{})
				biff.AssertEqual(len(list), 1)
				biff.AssertEqual(list[0].(JSON)["id"], bob)
			})
		})

		a.Alternative("Checkpoint", func(a *biff.A) {
			before := apiRequest("GET", "/state").Do().BodyJson().(JSON)

			resp := apiRequest("POST", "/state:checkpoint").Do()
			Save(resp, "Checkpoint", ``)

			biff.AssertEqual(resp.StatusCode, http.StatusOK)
			biff.AssertEqualJson(resp.BodyJson(), JSON{
				"depth":             1,
				"transaction_count": 0,
				"hash":              emptyHash,
			})

			a.Alternative("Zero and roll back", func(a *biff.A) {
				apiRequest("PUT", "/accounts/"+alice).WithBodyJson(JSON{"tokens": 0}).Do()

				resp := apiRequest("GET", "/accounts/"+alice).Do()
				biff.AssertEqual(resp.StatusCode, http.StatusNotFound)

				resp = apiRequest("POST", "/state:rollback").Do()
				Save(resp, "Rollback", ``)
				biff.AssertEqual(resp.StatusCode, http.StatusOK)
				biff.AssertEqualJson(resp.BodyJson(), before)

				resp = apiRequest("GET", "/accounts/"+alice).Do()
				biff.AssertEqual(resp.StatusCode, http.StatusOK)
				biff.AssertEqualJson(resp.BodyJson(), expectedAlice)
			})

			a.Alternative("Purge", func(a *biff.A) {
				apiRequest("POST", "/state:checkpoint").Do()

				resp := apiRequest("POST", "/state:purge").
					WithBodyJson(JSON{"depth": 0}).Do()
				Save(resp, "Purge", ``)

				biff.AssertEqual(resp.StatusCode, http.StatusOK)
				biff.AssertEqual(resp.BodyJson().(JSON)["depth"], float64(0))

				resp = apiRequest("GET", "/accounts/"+alice).Do()
				biff.AssertEqualJson(resp.BodyJson(), expectedAlice)
			})

			a.Alternative("Purge negative depth", func(a *biff.A) {
				resp := apiRequest("POST", "/state:purge").
					WithBodyJson(JSON{"depth": -1}).Do()

				biff.AssertEqual(resp.StatusCode, http.StatusBadRequest)
				biff.AssertEqual(resp.BodyJson().(JSON)["error"].(JSON)["message"], "depth must not be negative, got -1")
			})
		})

		a.Alternative("Stats", func(a *biff.A) {
			resp := apiRequest("GET", "/stats").Do()
			Save(resp, "Stats", ``)

			biff.AssertEqual(resp.StatusCode, http.StatusOK)
			stats := resp.BodyJson().(JSON)
			biff.AssertEqual(stats["depth"], float64(0))
			biff.AssertEqual(len(stats["shards"].([]interface{})), 2)
		})
	})
}

// Package gitops содержит git-адаптер workflow-графа (go-git).
//
// Покрывает операции clone, create-branch, commit, push над
// изолированной рабочей копией. Каждый run владеет своей копией
// единолично; токен доступа передаётся транспорту на время сетевой
// операции и не сохраняется в конфигурации клона.
package gitops

// Package handler 把 service 操作挂到 gin 路由上
package handler

import resp "studybuddy/internal/transport/http/response"

func deletedMsg(what string) resp.Msg { return resp.Msg{Message: what + " deleted successfully"} }
